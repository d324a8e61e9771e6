package crm

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropostaStatus is the pipeline label of a proposta
type PropostaStatus string

const (
	PropostaRascunho  PropostaStatus = "rascunho"
	PropostaEmAnalise PropostaStatus = "em_analise"
	PropostaAprovada  PropostaStatus = "aprovada"
	PropostaReprovada PropostaStatus = "reprovada"
	PropostaCancelada PropostaStatus = "cancelada"
)

// AllPropostaStatuses lists the statuses in pipeline order
func AllPropostaStatuses() []PropostaStatus {
	return []PropostaStatus{PropostaRascunho, PropostaEmAnalise, PropostaAprovada, PropostaReprovada, PropostaCancelada}
}

// IsValid reports whether s is a known status
func (s PropostaStatus) IsValid() bool {
	switch s {
	case PropostaRascunho, PropostaEmAnalise, PropostaAprovada, PropostaReprovada, PropostaCancelada:
		return true
	}
	return false
}

// IsDecided reports whether the status closes the proposta
func (s PropostaStatus) IsDecided() bool {
	return s == PropostaAprovada || s == PropostaReprovada || s == PropostaCancelada
}

var propostaStatusLabels = map[PropostaStatus]string{
	PropostaRascunho:  "Rascunho",
	PropostaEmAnalise: "Em análise",
	PropostaAprovada:  "Aprovada",
	PropostaReprovada: "Reprovada",
	PropostaCancelada: "Cancelada",
}

// Label returns the display name of the status
func (s PropostaStatus) Label() string {
	if l, ok := propostaStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

var minPropostaValor = decimal.RequireFromString("0.01")

// Proposta is a credit request for a cliente
type Proposta struct {
	shared.TenantAggregateRoot
	ClienteID   uuid.UUID
	BancoID     *uuid.UUID
	ProdutoID   *uuid.UUID
	Valor       decimal.Decimal
	Finalidade  string
	Observacoes string
	Status      PropostaStatus
	DataDecisao *time.Time
}

// PropostaInput carries the editable fields of a proposta
type PropostaInput struct {
	ClienteID   uuid.UUID
	BancoID     *uuid.UUID
	ProdutoID   *uuid.UUID
	Valor       decimal.Decimal
	Finalidade  string
	Observacoes string
	Status      PropostaStatus
}

func (in PropostaInput) normalize() (PropostaInput, error) {
	in.Finalidade = trim(in.Finalidade)
	in.Observacoes = trim(in.Observacoes)
	in.BancoID = optionalID(in.BancoID)
	in.ProdutoID = optionalID(in.ProdutoID)
	if in.Status == "" {
		in.Status = PropostaRascunho
	}

	if err := requireID("cliente_id", "Cliente", in.ClienteID); err != nil {
		return in, err
	}
	if in.Valor.LessThan(minPropostaValor) {
		return in, shared.NewFieldError("valor", "Valor deve ser maior que zero")
	}
	if err := validateLength("finalidade", "Finalidade", in.Finalidade, 0, maxFinalidade); err != nil {
		return in, err
	}
	if err := validateLength("observacoes", "Observações", in.Observacoes, 0, maxObservacoes); err != nil {
		return in, err
	}
	if !in.Status.IsValid() {
		return in, shared.NewFieldError("status", "Status inválido")
	}
	return in, nil
}

// NewProposta validates the input and creates a proposta
func NewProposta(tenantID uuid.UUID, input PropostaInput) (*Proposta, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	p := &Proposta{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClienteID:           in.ClienteID,
		BancoID:             in.BancoID,
		ProdutoID:           in.ProdutoID,
		Valor:               in.Valor,
		Finalidade:          in.Finalidade,
		Observacoes:         in.Observacoes,
		Status:              in.Status,
	}
	if p.Status.IsDecided() {
		now := p.CreatedAt
		p.DataDecisao = &now
	}
	p.AddDomainEvent(NewRecordChangedEvent(EntityProposta, ActionCreated, p.ID, tenantID, p.Label(), nil, p.Snapshot()))
	return p, nil
}

// Update replaces the editable fields, status included
func (p *Proposta) Update(input PropostaInput) error {
	in, err := input.normalize()
	if err != nil {
		return err
	}

	previous := p.Snapshot()
	p.ClienteID = in.ClienteID
	p.BancoID = in.BancoID
	p.ProdutoID = in.ProdutoID
	p.Valor = in.Valor
	p.Finalidade = in.Finalidade
	p.Observacoes = in.Observacoes
	p.applyStatus(in.Status)
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewRecordChangedEvent(EntityProposta, ActionUpdated, p.ID, p.TenantID, p.Label(), previous, p.Snapshot()))
	return nil
}

// ChangeStatus moves the proposta to another pipeline label. Any known
// label is accepted from any other.
func (p *Proposta) ChangeStatus(status PropostaStatus) error {
	if !status.IsValid() {
		return shared.NewFieldError("status", "Status inválido")
	}
	if p.Status == status {
		return nil
	}

	previous := p.Snapshot()
	p.applyStatus(status)
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewRecordChangedEvent(EntityProposta, ActionUpdated, p.ID, p.TenantID, p.Label(), previous, p.Snapshot()).
		WithDetails(map[string]any{"status_anterior": previous["status"], "status_novo": string(status)}))
	return nil
}

func (p *Proposta) applyStatus(status PropostaStatus) {
	if status == p.Status {
		return
	}
	p.Status = status
	if status.IsDecided() {
		now := time.Now()
		p.DataDecisao = &now
	} else {
		p.DataDecisao = nil
	}
}

// MarkDeleted records the deletion event
func (p *Proposta) MarkDeleted() {
	p.AddDomainEvent(NewRecordChangedEvent(EntityProposta, ActionDeleted, p.ID, p.TenantID, p.Label(), p.Snapshot(), nil))
}

// Label is the human readable name used in the activity log
func (p *Proposta) Label() string {
	label := "Proposta " + valueobject.NewMoney(p.Valor).Format()
	if p.Finalidade != "" {
		label += " - " + p.Finalidade
	}
	return label
}

// Snapshot returns the audit representation of the proposta
func (p *Proposta) Snapshot() map[string]any {
	return map[string]any{
		"cliente_id":  p.ClienteID.String(),
		"banco_id":    idString(p.BancoID),
		"produto_id":  idString(p.ProdutoID),
		"valor":       p.Valor.StringFixed(2),
		"finalidade":  p.Finalidade,
		"observacoes": p.Observacoes,
		"status":      string(p.Status),
	}
}
