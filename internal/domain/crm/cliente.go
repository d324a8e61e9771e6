package crm

import (
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const (
	clienteNomeMin = 3
	clienteNomeMax = 200
)

// Cliente is a borrower the empresa originates proposals for
type Cliente struct {
	shared.TenantAggregateRoot
	Nome     string
	CPF      string // 11 digits, no punctuation
	Email    string
	Telefone string
	Endereco string
}

// ClienteInput carries the editable fields of a cliente
type ClienteInput struct {
	Nome     string
	CPF      string
	Email    string
	Telefone string
	Endereco string
}

func (in ClienteInput) normalize() (ClienteInput, error) {
	in.Nome = trim(in.Nome)
	in.Email = trim(in.Email)
	in.Telefone = trim(in.Telefone)
	in.Endereco = trim(in.Endereco)

	if err := validateLength("nome", "Nome", in.Nome, clienteNomeMin, clienteNomeMax); err != nil {
		return in, err
	}
	if trim(in.CPF) == "" {
		return in, shared.NewFieldError("cpf", "CPF é obrigatório")
	}
	cpf, err := valueobject.NewCPF(in.CPF)
	if err != nil {
		return in, shared.NewFieldError("cpf", "CPF inválido")
	}
	in.CPF = cpf.String()
	if err := validateEmail("email", in.Email, false); err != nil {
		return in, err
	}
	if err := validatePhone("telefone", in.Telefone); err != nil {
		return in, err
	}
	if err := validateLength("endereco", "Endereço", in.Endereco, 0, maxAddressLength); err != nil {
		return in, err
	}
	return in, nil
}

// NewCliente validates the input and creates a cliente
func NewCliente(tenantID uuid.UUID, input ClienteInput) (*Cliente, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	c := &Cliente{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Nome:                in.Nome,
		CPF:                 in.CPF,
		Email:               in.Email,
		Telefone:            in.Telefone,
		Endereco:            in.Endereco,
	}
	c.AddDomainEvent(NewRecordChangedEvent(EntityCliente, ActionCreated, c.ID, tenantID, c.Nome, nil, c.Snapshot()))
	return c, nil
}

// Update replaces the editable fields
func (c *Cliente) Update(input ClienteInput) error {
	in, err := input.normalize()
	if err != nil {
		return err
	}

	previous := c.Snapshot()
	c.Nome = in.Nome
	c.CPF = in.CPF
	c.Email = in.Email
	c.Telefone = in.Telefone
	c.Endereco = in.Endereco
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewRecordChangedEvent(EntityCliente, ActionUpdated, c.ID, c.TenantID, c.Nome, previous, c.Snapshot()))
	return nil
}

// MarkDeleted records the deletion event
func (c *Cliente) MarkDeleted() {
	c.AddDomainEvent(NewRecordChangedEvent(EntityCliente, ActionDeleted, c.ID, c.TenantID, c.Nome, c.Snapshot(), nil))
}

// CPFFormatted returns the CPF as 000.000.000-00
func (c *Cliente) CPFFormatted() string {
	cpf, err := valueobject.NewCPF(c.CPF)
	if err != nil {
		return c.CPF
	}
	return cpf.Formatted()
}

// Snapshot returns the audit representation of the cliente
func (c *Cliente) Snapshot() map[string]any {
	return map[string]any{
		"nome":     c.Nome,
		"cpf":      c.CPF,
		"email":    c.Email,
		"telefone": c.Telefone,
		"endereco": c.Endereco,
	}
}
