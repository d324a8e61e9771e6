package crm

import (
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const bancoNomeMax = 100

// Banco is a partner bank that offers produtos and receives propostas
type Banco struct {
	shared.TenantAggregateRoot
	Nome     string
	CNPJ     string
	Email    string
	Telefone string
	Ativo    bool
}

// BancoInput carries the editable fields of a banco
type BancoInput struct {
	Nome     string
	CNPJ     string
	Email    string
	Telefone string
}

func (in BancoInput) normalize() (BancoInput, error) {
	in.Nome = trim(in.Nome)
	in.Email = trim(in.Email)
	in.Telefone = trim(in.Telefone)

	if err := validateLength("nome", "Nome", in.Nome, 1, bancoNomeMax); err != nil {
		return in, err
	}
	cnpj, err := normalizeCNPJ("cnpj", in.CNPJ)
	if err != nil {
		return in, err
	}
	in.CNPJ = cnpj
	if err := validateEmail("email", in.Email, false); err != nil {
		return in, err
	}
	if err := validatePhone("telefone", in.Telefone); err != nil {
		return in, err
	}
	return in, nil
}

// NewBanco validates the input and creates an active banco
func NewBanco(tenantID uuid.UUID, input BancoInput) (*Banco, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	b := &Banco{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Nome:                in.Nome,
		CNPJ:                in.CNPJ,
		Email:               in.Email,
		Telefone:            in.Telefone,
		Ativo:               true,
	}
	b.AddDomainEvent(NewRecordChangedEvent(EntityBanco, ActionCreated, b.ID, tenantID, b.Nome, nil, b.Snapshot()))
	return b, nil
}

// Update replaces the editable fields
func (b *Banco) Update(input BancoInput) error {
	in, err := input.normalize()
	if err != nil {
		return err
	}

	previous := b.Snapshot()
	b.Nome = in.Nome
	b.CNPJ = in.CNPJ
	b.Email = in.Email
	b.Telefone = in.Telefone
	b.Touch()
	b.IncrementVersion()

	b.AddDomainEvent(NewRecordChangedEvent(EntityBanco, ActionUpdated, b.ID, b.TenantID, b.Nome, previous, b.Snapshot()))
	return nil
}

// Activate marks the banco as active
func (b *Banco) Activate() {
	b.setAtivo(true)
}

// Deactivate hides the banco from selection lists while keeping its history
func (b *Banco) Deactivate() {
	b.setAtivo(false)
}

func (b *Banco) setAtivo(ativo bool) {
	if b.Ativo == ativo {
		return
	}
	previous := b.Snapshot()
	b.Ativo = ativo
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewRecordChangedEvent(EntityBanco, ActionUpdated, b.ID, b.TenantID, b.Nome, previous, b.Snapshot()))
}

// MarkDeleted records the deletion event
func (b *Banco) MarkDeleted() {
	b.AddDomainEvent(NewRecordChangedEvent(EntityBanco, ActionDeleted, b.ID, b.TenantID, b.Nome, b.Snapshot(), nil))
}

// Snapshot returns the audit representation of the banco
func (b *Banco) Snapshot() map[string]any {
	return map[string]any{
		"nome":     b.Nome,
		"cnpj":     b.CNPJ,
		"email":    b.Email,
		"telefone": b.Telefone,
		"ativo":    b.Ativo,
	}
}

// BancoDeleteOutcome tells the caller what deleting a banco actually did
type BancoDeleteOutcome string

const (
	BancoDeleted     BancoDeleteOutcome = "deleted"
	BancoDeactivated BancoDeleteOutcome = "deactivated"
)
