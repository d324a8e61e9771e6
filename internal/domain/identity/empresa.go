package identity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/domain/shared/valueobject"
)

const empresaNomeMax = 200

// Empresa is the tenant. Every crm record and user belongs to exactly one empresa.
type Empresa struct {
	shared.BaseAggregateRoot
	Nome  string
	CNPJ  string
	Ativo bool
}

// NewEmpresa creates an active empresa
func NewEmpresa(nome, cnpj string) (*Empresa, error) {
	nome, cnpj, err := normalizeEmpresa(nome, cnpj)
	if err != nil {
		return nil, err
	}

	e := &Empresa{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Nome:              nome,
		CNPJ:              cnpj,
		Ativo:             true,
	}
	e.AddDomainEvent(NewEmpresaCreatedEvent(e))
	return e, nil
}

// Update changes the empresa name and CNPJ
func (e *Empresa) Update(nome, cnpj string) error {
	nome, cnpj, err := normalizeEmpresa(nome, cnpj)
	if err != nil {
		return err
	}
	e.Nome = nome
	e.CNPJ = cnpj
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// Deactivate blocks every user of the empresa from logging in
func (e *Empresa) Deactivate() {
	if !e.Ativo {
		return
	}
	e.Ativo = false
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// Activate re-enables the empresa
func (e *Empresa) Activate() {
	if e.Ativo {
		return
	}
	e.Ativo = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

func normalizeEmpresa(nome, cnpj string) (string, string, error) {
	nome = strings.TrimSpace(nome)
	n := utf8.RuneCountInString(nome)
	if n == 0 {
		return "", "", shared.NewFieldError("empresa_nome", "Nome da empresa é obrigatório")
	}
	if n > empresaNomeMax {
		return "", "", shared.NewFieldError("empresa_nome", "Nome da empresa deve ter no máximo 200 caracteres")
	}
	doc, err := valueobject.NewOptionalCNPJ(cnpj)
	if err != nil {
		return "", "", shared.NewFieldError("empresa_cnpj", "CNPJ inválido")
	}
	return nome, doc.String(), nil
}
