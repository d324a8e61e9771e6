package crm

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusRecebimento tracks whether a commission was paid out
type StatusRecebimento string

const (
	RecebimentoPendente StatusRecebimento = "pendente"
	RecebimentoRecebido StatusRecebimento = "recebido"
)

// IsValid reports whether s is a known status
func (s StatusRecebimento) IsValid() bool {
	return s == RecebimentoPendente || s == RecebimentoRecebido
}

// Comissao is a commission expected from the banco for a proposta
type Comissao struct {
	shared.TenantAggregateRoot
	PropostaID         uuid.UUID
	ValorComissao      decimal.Decimal
	PercentualComissao *decimal.Decimal
	DataPrevisao       *time.Time
	DataRecebimento    *time.Time
	StatusRecebimento  StatusRecebimento
	Observacao         string
	UsuarioID          *uuid.UUID
}

// ComissaoInput carries the editable fields of a comissao
type ComissaoInput struct {
	ValorComissao      decimal.Decimal
	PercentualComissao *decimal.Decimal
	DataPrevisao       *time.Time
	Observacao         string
}

func (in ComissaoInput) normalize() (ComissaoInput, error) {
	in.Observacao = trim(in.Observacao)
	if !in.ValorComissao.IsPositive() {
		return in, shared.NewFieldError("valor_comissao", "Valor da comissão deve ser maior que zero")
	}
	if err := validatePercent("percentual_comissao", "Percentual", in.PercentualComissao); err != nil {
		return in, err
	}
	if err := validateLength("observacao", "Observação", in.Observacao, 0, maxObservacoes); err != nil {
		return in, err
	}
	return in, nil
}

// NewComissao creates a pending commission for a proposta
func NewComissao(tenantID, propostaID uuid.UUID, usuarioID *uuid.UUID, input ComissaoInput) (*Comissao, error) {
	if err := requireID("proposta_id", "Proposta", propostaID); err != nil {
		return nil, err
	}
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	c := &Comissao{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PropostaID:          propostaID,
		ValorComissao:       in.ValorComissao,
		PercentualComissao:  in.PercentualComissao,
		DataPrevisao:        in.DataPrevisao,
		StatusRecebimento:   RecebimentoPendente,
		Observacao:          in.Observacao,
		UsuarioID:           optionalID(usuarioID),
	}
	if c.UsuarioID != nil {
		c.SetCreatedBy(*c.UsuarioID)
	}
	c.AddDomainEvent(NewRecordChangedEvent(EntityComissao, ActionCreated, c.ID, tenantID, c.Label(), nil, c.Snapshot()))
	return c, nil
}

// Update changes the amounts, forecast date and note
func (c *Comissao) Update(input ComissaoInput) error {
	in, err := input.normalize()
	if err != nil {
		return err
	}

	previous := c.Snapshot()
	c.ValorComissao = in.ValorComissao
	c.PercentualComissao = in.PercentualComissao
	c.DataPrevisao = in.DataPrevisao
	c.Observacao = in.Observacao
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewRecordChangedEvent(EntityComissao, ActionUpdated, c.ID, c.TenantID, c.Label(), previous, c.Snapshot()))
	return nil
}

// MarcarComoPago records that the commission was received on the given date
func (c *Comissao) MarcarComoPago(dataRecebimento time.Time) error {
	if c.StatusRecebimento == RecebimentoRecebido {
		return shared.NewDomainError(shared.CodeInvalidState, "Comissão já foi marcada como recebida")
	}
	if dataRecebimento.IsZero() {
		return shared.NewFieldError("data_recebimento", "Data de recebimento é obrigatória")
	}

	previous := c.Snapshot()
	c.StatusRecebimento = RecebimentoRecebido
	c.DataRecebimento = &dataRecebimento
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewRecordChangedEvent(EntityComissao, ActionUpdated, c.ID, c.TenantID, c.Label(), previous, c.Snapshot()))
	return nil
}

// IsPaid reports whether the commission was received
func (c *Comissao) IsPaid() bool {
	return c.StatusRecebimento == RecebimentoRecebido
}

// MarkDeleted records the deletion event
func (c *Comissao) MarkDeleted() {
	c.AddDomainEvent(NewRecordChangedEvent(EntityComissao, ActionDeleted, c.ID, c.TenantID, c.Label(), c.Snapshot(), nil))
}

// Label is the human readable name used in the activity log
func (c *Comissao) Label() string {
	return "Comissão " + valueobject.NewMoney(c.ValorComissao).Format()
}

// Snapshot returns the audit representation of the comissao
func (c *Comissao) Snapshot() map[string]any {
	snap := map[string]any{
		"proposta_id":         c.PropostaID.String(),
		"valor_comissao":      c.ValorComissao.StringFixed(2),
		"percentual_comissao": decimalString(c.PercentualComissao),
		"status_recebimento":  string(c.StatusRecebimento),
		"observacao":          c.Observacao,
	}
	if c.DataPrevisao != nil {
		snap["data_previsao"] = c.DataPrevisao.Format(time.DateOnly)
	}
	if c.DataRecebimento != nil {
		snap["data_recebimento"] = c.DataRecebimento.Format(time.DateOnly)
	}
	return snap
}
