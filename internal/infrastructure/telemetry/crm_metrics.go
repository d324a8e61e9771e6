package telemetry

import (
	"context"
	"errors"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// CRMMetrics records business metrics derived from domain events.
// It is subscribed to the event bus like any other handler.
type CRMMetrics struct {
	logger *zap.Logger

	recordChanges   *Counter
	propostaStatus  *Counter
	valorAprovado   *FloatCounter
	empresasCreated *Counter
	logins          *Counter
	realtimeClients *Gauge
}

// NewCRMMetrics creates the CRM instruments on the given meter.
func NewCRMMetrics(meter metric.Meter, logger *zap.Logger) (*CRMMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &CRMMetrics{logger: logger}
	var err error

	if m.recordChanges, err = NewCounter(meter,
		"crm_record_changes_total", "Records created, updated or deleted", "{change}"); err != nil {
		return nil, err
	}
	if m.propostaStatus, err = NewCounter(meter,
		"crm_proposta_status_total", "Propostas entering each pipeline status", "{proposta}"); err != nil {
		return nil, err
	}
	if m.valorAprovado, err = NewFloatCounter(meter,
		"crm_proposta_valor_aprovado_total", "Sum of approved proposta values", "BRL"); err != nil {
		return nil, err
	}
	if m.empresasCreated, err = NewCounter(meter,
		"crm_empresas_created_total", "Empresas registered", "{empresa}"); err != nil {
		return nil, err
	}
	if m.logins, err = NewCounter(meter,
		"auth_logins_total", "Login attempts by outcome", "{login}"); err != nil {
		return nil, err
	}
	if m.realtimeClients, err = NewGauge(meter,
		"realtime_clients", "Connected server-sent event clients", "{client}"); err != nil {
		return nil, err
	}

	return m, nil
}

// Name identifies the handler in logs and idempotency keys.
func (m *CRMMetrics) Name() string {
	return "crm-metrics"
}

// EventTypes subscribes to every crm change plus empresa registration.
func (m *CRMMetrics) EventTypes() []string {
	return append(crm.AllEventTypes(), identity.EventTypeEmpresaCreated)
}

// Handle records the metrics for one event. It never fails.
func (m *CRMMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *crm.RecordChangedEvent:
		m.recordChanges.Inc(ctx, tenant, AttrEntity.String(string(e.Entity)), AttrAction.String(string(e.Action)))
		if e.Entity == crm.EntityProposta {
			m.recordPropostaStatus(ctx, tenant, e)
		}
	case *identity.EmpresaCreatedEvent:
		m.empresasCreated.Inc(ctx)
	default:
		m.logger.Debug("Ignoring event in crm metrics", zap.String("event_type", event.EventType()))
	}
	return nil
}

func (m *CRMMetrics) recordPropostaStatus(ctx context.Context, tenant attribute.KeyValue, e *crm.RecordChangedEvent) {
	if e.Action == crm.ActionDeleted {
		return
	}
	prev, _ := e.Previous["status"].(string)
	cur, _ := e.Current["status"].(string)
	if cur == "" || cur == prev {
		return
	}

	m.propostaStatus.Inc(ctx, tenant, AttrPropostaState.String(cur))

	if crm.PropostaStatus(cur) != crm.PropostaAprovada {
		return
	}
	raw, _ := e.Current["valor"].(string)
	valor, err := decimal.NewFromString(raw)
	if err != nil {
		m.logger.Warn("Proposta valor is not a decimal", zap.String("valor", raw), zap.Error(err))
		return
	}
	m.valorAprovado.Add(ctx, valor.InexactFloat64(), tenant)
}

// RecordLogin counts a login attempt. It satisfies the auth service login recorder.
func (m *CRMMetrics) RecordLogin(ctx context.Context, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.logins.Inc(ctx, AttrLoginOutcome.String(outcome))
}

// RecordRealtimeClients reports how many stream clients are connected.
func (m *CRMMetrics) RecordRealtimeClients(ctx context.Context, n int) {
	m.realtimeClients.Record(ctx, int64(n))
}

var _ shared.EventHandler = (*CRMMetrics)(nil)
