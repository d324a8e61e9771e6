package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	DefaultTrendDays   = 30
	MaxTrendDays       = 365
	DefaultRecentLimit = 5
	MaxRecentLimit     = 50
)

// KPIs are the dashboard headline numbers
type KPIs struct {
	TotalClientes      int64           `json:"total_clientes"`
	TotalPropostas     int64           `json:"total_propostas"`
	PropostasAprovadas int64           `json:"propostas_aprovadas"`
	PropostasPendentes int64           `json:"propostas_pendentes"`
	PropostasAnalise   int64           `json:"propostas_analise"`
	ValorTotalAprovado decimal.Decimal `json:"valor_total_aprovado"`
	TicketMedio        decimal.Decimal `json:"ticket_medio"`
	TaxaAprovacao      decimal.Decimal `json:"taxa_aprovacao"`
}

// StatusCount is the number of propostas in one status
type StatusCount struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int64  `json:"count"`
}

// Service computes the dashboard figures of a tenant
type Service struct {
	clientes  crm.ClienteRepository
	propostas crm.PropostaRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new dashboard Service
func NewService(clientes crm.ClienteRepository, propostas crm.PropostaRepository, logger *zap.Logger) *Service {
	return &Service{clientes: clientes, propostas: propostas, logger: logger, now: time.Now}
}

// KPIs returns counts, approved value, average ticket and approval rate.
// The cliente count and the proposta aggregate run concurrently.
func (s *Service) KPIs(ctx context.Context, tenantID uuid.UUID) (*KPIs, error) {
	var (
		totalClientes int64
		stats         *crm.PropostaStats
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		n, err := s.clientes.Count(ctx, tenantID, shared.Filter{})
		if err != nil {
			return fmt.Errorf("failed to count clientes: %w", err)
		}
		totalClientes = n
		return nil
	})
	p.Go(func(ctx context.Context) error {
		st, err := s.propostas.Stats(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to aggregate propostas: %w", err)
		}
		stats = st
		return nil
	})
	if err := p.Wait(); err != nil {
		s.logger.Warn("Dashboard KPIs failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return nil, err
	}

	aprovadas := stats.ByStatus[crm.PropostaAprovada]
	ticket := decimal.Zero
	if aprovadas > 0 {
		ticket = stats.ValorTotalAprovado.Div(decimal.NewFromInt(aprovadas)).Round(2)
	}

	return &KPIs{
		TotalClientes:      totalClientes,
		TotalPropostas:     stats.Total,
		PropostasAprovadas: aprovadas,
		PropostasPendentes: stats.ByStatus[crm.PropostaRascunho],
		PropostasAnalise:   stats.ByStatus[crm.PropostaEmAnalise],
		ValorTotalAprovado: stats.ValorTotalAprovado,
		TicketMedio:        ticket,
		TaxaAprovacao:      valueobject.RatioPercent(aprovadas, stats.Total),
	}, nil
}

// Trends returns one point per day for the last days days, today included.
// Days without propostas are present with zero count.
func (s *Service) Trends(ctx context.Context, tenantID uuid.UUID, days int) ([]crm.TrendPoint, error) {
	days = clamp(days, DefaultTrendDays, MaxTrendDays)
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.propostas.DailyTrend(ctx, tenantID, today.AddDate(0, 0, -(days-1)), today)
}

// StatusBreakdown returns the proposta count of every status, in pipeline order
func (s *Service) StatusBreakdown(ctx context.Context, tenantID uuid.UUID) ([]StatusCount, error) {
	stats, err := s.propostas.Stats(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate propostas: %w", err)
	}
	statuses := crm.AllPropostaStatuses()
	out := make([]StatusCount, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, StatusCount{Status: string(st), Label: st.Label(), Count: stats.ByStatus[st]})
	}
	return out, nil
}

// RecentPropostas returns the latest propostas with the cliente name
func (s *Service) RecentPropostas(ctx context.Context, tenantID uuid.UUID, limit int) ([]crm.RecentProposta, error) {
	return s.propostas.FindRecent(ctx, tenantID, clamp(limit, DefaultRecentLimit, MaxRecentLimit))
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
