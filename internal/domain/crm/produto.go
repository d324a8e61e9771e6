package crm

import (
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const produtoNomeMax = 100

// ProdutoStatus is the availability of a produto
type ProdutoStatus string

const (
	ProdutoAtivo   ProdutoStatus = "ativo"
	ProdutoInativo ProdutoStatus = "inativo"
)

// IsValid reports whether s is a known status
func (s ProdutoStatus) IsValid() bool {
	return s == ProdutoAtivo || s == ProdutoInativo
}

// Produto is a credit product, usually offered by a banco
type Produto struct {
	shared.TenantAggregateRoot
	Nome        string
	TipoCredito string
	TaxaJuros   *decimal.Decimal // monthly rate, percent
	Status      ProdutoStatus
	BancoID     *uuid.UUID
}

// ProdutoInput carries the editable fields of a produto
type ProdutoInput struct {
	Nome        string
	TipoCredito string
	TaxaJuros   *decimal.Decimal
	Status      ProdutoStatus
	BancoID     *uuid.UUID
}

func (in ProdutoInput) normalize() (ProdutoInput, error) {
	in.Nome = trim(in.Nome)
	in.TipoCredito = trim(in.TipoCredito)
	in.BancoID = optionalID(in.BancoID)
	if in.Status == "" {
		in.Status = ProdutoAtivo
	}

	if err := validateLength("nome", "Nome", in.Nome, 1, produtoNomeMax); err != nil {
		return in, err
	}
	if err := validateLength("tipo_credito", "Tipo de crédito", in.TipoCredito, 1, maxTipoCredito); err != nil {
		return in, err
	}
	if err := validatePercent("taxa_juros", "Taxa de juros", in.TaxaJuros); err != nil {
		return in, err
	}
	if !in.Status.IsValid() {
		return in, shared.NewFieldError("status", "Status inválido")
	}
	return in, nil
}

// NewProduto validates the input and creates a produto
func NewProduto(tenantID uuid.UUID, input ProdutoInput) (*Produto, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	p := &Produto{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Nome:                in.Nome,
		TipoCredito:         in.TipoCredito,
		TaxaJuros:           in.TaxaJuros,
		Status:              in.Status,
		BancoID:             in.BancoID,
	}
	p.AddDomainEvent(NewRecordChangedEvent(EntityProduto, ActionCreated, p.ID, tenantID, p.Nome, nil, p.Snapshot()))
	return p, nil
}

// Update replaces the editable fields
func (p *Produto) Update(input ProdutoInput) error {
	in, err := input.normalize()
	if err != nil {
		return err
	}

	previous := p.Snapshot()
	p.Nome = in.Nome
	p.TipoCredito = in.TipoCredito
	p.TaxaJuros = in.TaxaJuros
	p.Status = in.Status
	p.BancoID = in.BancoID
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewRecordChangedEvent(EntityProduto, ActionUpdated, p.ID, p.TenantID, p.Nome, previous, p.Snapshot()))
	return nil
}

// IsActive reports whether the produto can be offered
func (p *Produto) IsActive() bool {
	return p.Status == ProdutoAtivo
}

// MarkDeleted records the deletion event
func (p *Produto) MarkDeleted() {
	p.AddDomainEvent(NewRecordChangedEvent(EntityProduto, ActionDeleted, p.ID, p.TenantID, p.Nome, p.Snapshot(), nil))
}

// Snapshot returns the audit representation of the produto
func (p *Produto) Snapshot() map[string]any {
	return map[string]any{
		"nome":         p.Nome,
		"tipo_credito": p.TipoCredito,
		"taxa_juros":   decimalString(p.TaxaJuros),
		"status":       string(p.Status),
		"banco_id":     idString(p.BancoID),
	}
}
