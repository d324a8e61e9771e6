package crm

import (
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const promotoraNomeMax = 100

// Promotora is an intermediary that brings propostas in exchange for commission
type Promotora struct {
	shared.TenantAggregateRoot
	Nome           string
	BancoID        uuid.UUID
	CNPJ           string
	Email          string
	Telefone       string
	Contato        string
	ComissaoPadrao *decimal.Decimal
}

// PromotoraInput carries the editable fields of a promotora
type PromotoraInput struct {
	Nome           string
	BancoID        uuid.UUID
	CNPJ           string
	Email          string
	Telefone       string
	Contato        string
	ComissaoPadrao *decimal.Decimal
}

func (in PromotoraInput) normalize() (PromotoraInput, error) {
	in.Nome = trim(in.Nome)
	in.Email = trim(in.Email)
	in.Telefone = trim(in.Telefone)
	in.Contato = trim(in.Contato)

	if err := validateLength("nome", "Nome", in.Nome, 1, promotoraNomeMax); err != nil {
		return in, err
	}
	if err := requireID("banco_id", "Banco", in.BancoID); err != nil {
		return in, err
	}
	if err := validateEmail("email", in.Email, true); err != nil {
		return in, err
	}
	if err := validatePhone("telefone", in.Telefone); err != nil {
		return in, err
	}
	if err := validateLength("contato", "Contato", in.Contato, 0, maxContactLength); err != nil {
		return in, err
	}
	cnpj, err := normalizeCNPJ("cnpj", in.CNPJ)
	if err != nil {
		return in, err
	}
	in.CNPJ = cnpj
	if err := validatePercent("comissao_padrao", "Comissão", in.ComissaoPadrao); err != nil {
		return in, err
	}
	return in, nil
}

// NewPromotora validates the input and creates a promotora
func NewPromotora(tenantID uuid.UUID, input PromotoraInput) (*Promotora, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	p := &Promotora{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Nome:                in.Nome,
		BancoID:             in.BancoID,
		CNPJ:                in.CNPJ,
		Email:               in.Email,
		Telefone:            in.Telefone,
		Contato:             in.Contato,
		ComissaoPadrao:      in.ComissaoPadrao,
	}
	p.AddDomainEvent(NewRecordChangedEvent(EntityPromotora, ActionCreated, p.ID, tenantID, p.Nome, nil, p.Snapshot()))
	return p, nil
}

// Update replaces the editable fields
func (p *Promotora) Update(input PromotoraInput) error {
	in, err := input.normalize()
	if err != nil {
		return err
	}

	previous := p.Snapshot()
	p.Nome = in.Nome
	p.BancoID = in.BancoID
	p.CNPJ = in.CNPJ
	p.Email = in.Email
	p.Telefone = in.Telefone
	p.Contato = in.Contato
	p.ComissaoPadrao = in.ComissaoPadrao
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewRecordChangedEvent(EntityPromotora, ActionUpdated, p.ID, p.TenantID, p.Nome, previous, p.Snapshot()))
	return nil
}

// MarkDeleted records the deletion event
func (p *Promotora) MarkDeleted() {
	p.AddDomainEvent(NewRecordChangedEvent(EntityPromotora, ActionDeleted, p.ID, p.TenantID, p.Nome, p.Snapshot(), nil))
}

// Snapshot returns the audit representation of the promotora
func (p *Promotora) Snapshot() map[string]any {
	return map[string]any{
		"nome":            p.Nome,
		"banco_id":        p.BancoID.String(),
		"cnpj":            p.CNPJ,
		"email":           p.Email,
		"telefone":        p.Telefone,
		"contato":         p.Contato,
		"comissao_padrao": decimalString(p.ComissaoPadrao),
	}
}
