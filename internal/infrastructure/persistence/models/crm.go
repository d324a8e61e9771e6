package models

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClienteModel is the persistence model for the Cliente aggregate.
type ClienteModel struct {
	TenantAggregateModel
	Nome     string `gorm:"type:varchar(200);not null;index"`
	CPF      string `gorm:"column:cpf;type:varchar(11);not null"`
	Email    string `gorm:"type:varchar(255)"`
	Telefone string `gorm:"type:varchar(30)"`
	Endereco string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ClienteModel) TableName() string {
	return "clientes"
}

// ToDomain converts the persistence model to a domain Cliente
func (m *ClienteModel) ToDomain() *crm.Cliente {
	c := &crm.Cliente{
		Nome:     m.Nome,
		CPF:      m.CPF,
		Email:    m.Email,
		Telefone: m.Telefone,
		Endereco: m.Endereco,
	}
	m.fillTenantRoot(&c.TenantAggregateRoot)
	return c
}

// ClienteModelFromDomain creates a persistence model from a domain Cliente
func ClienteModelFromDomain(c *crm.Cliente) *ClienteModel {
	m := &ClienteModel{
		Nome:     c.Nome,
		CPF:      c.CPF,
		Email:    c.Email,
		Telefone: c.Telefone,
		Endereco: c.Endereco,
	}
	m.setTenantRoot(c.TenantAggregateRoot)
	return m
}

// BancoModel is the persistence model for the Banco aggregate.
type BancoModel struct {
	TenantAggregateModel
	Nome     string `gorm:"type:varchar(100);not null;index"`
	CNPJ     string `gorm:"column:cnpj;type:varchar(14)"`
	Email    string `gorm:"type:varchar(255)"`
	Telefone string `gorm:"type:varchar(30)"`
	Ativo    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BancoModel) TableName() string {
	return "bancos"
}

// ToDomain converts the persistence model to a domain Banco
func (m *BancoModel) ToDomain() *crm.Banco {
	b := &crm.Banco{
		Nome:     m.Nome,
		CNPJ:     m.CNPJ,
		Email:    m.Email,
		Telefone: m.Telefone,
		Ativo:    m.Ativo,
	}
	m.fillTenantRoot(&b.TenantAggregateRoot)
	return b
}

// BancoModelFromDomain creates a persistence model from a domain Banco
func BancoModelFromDomain(b *crm.Banco) *BancoModel {
	m := &BancoModel{
		Nome:     b.Nome,
		CNPJ:     b.CNPJ,
		Email:    b.Email,
		Telefone: b.Telefone,
		Ativo:    b.Ativo,
	}
	m.setTenantRoot(b.TenantAggregateRoot)
	return m
}

// ProdutoModel is the persistence model for the Produto aggregate.
type ProdutoModel struct {
	TenantAggregateModel
	Nome        string            `gorm:"type:varchar(100);not null;index"`
	TipoCredito string            `gorm:"type:varchar(100);not null"`
	TaxaJuros   *decimal.Decimal  `gorm:"type:decimal(5,2)"`
	Status      crm.ProdutoStatus `gorm:"type:varchar(20);not null;default:'ativo'"`
	BancoID     *uuid.UUID        `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProdutoModel) TableName() string {
	return "produtos"
}

// ToDomain converts the persistence model to a domain Produto
func (m *ProdutoModel) ToDomain() *crm.Produto {
	p := &crm.Produto{
		Nome:        m.Nome,
		TipoCredito: m.TipoCredito,
		TaxaJuros:   m.TaxaJuros,
		Status:      m.Status,
		BancoID:     m.BancoID,
	}
	m.fillTenantRoot(&p.TenantAggregateRoot)
	return p
}

// ProdutoModelFromDomain creates a persistence model from a domain Produto
func ProdutoModelFromDomain(p *crm.Produto) *ProdutoModel {
	m := &ProdutoModel{
		Nome:        p.Nome,
		TipoCredito: p.TipoCredito,
		TaxaJuros:   p.TaxaJuros,
		Status:      p.Status,
		BancoID:     p.BancoID,
	}
	m.setTenantRoot(p.TenantAggregateRoot)
	return m
}

// PromotoraModel is the persistence model for the Promotora aggregate.
type PromotoraModel struct {
	TenantAggregateModel
	Nome           string           `gorm:"type:varchar(200);not null;index"`
	BancoID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	CNPJ           string           `gorm:"column:cnpj;type:varchar(14)"`
	Email          string           `gorm:"type:varchar(255);not null"`
	Telefone       string           `gorm:"type:varchar(30)"`
	Contato        string           `gorm:"type:varchar(100)"`
	ComissaoPadrao *decimal.Decimal `gorm:"type:decimal(5,2)"`
}

// TableName returns the table name for GORM
func (PromotoraModel) TableName() string {
	return "promotoras"
}

// ToDomain converts the persistence model to a domain Promotora
func (m *PromotoraModel) ToDomain() *crm.Promotora {
	p := &crm.Promotora{
		Nome:           m.Nome,
		BancoID:        m.BancoID,
		CNPJ:           m.CNPJ,
		Email:          m.Email,
		Telefone:       m.Telefone,
		Contato:        m.Contato,
		ComissaoPadrao: m.ComissaoPadrao,
	}
	m.fillTenantRoot(&p.TenantAggregateRoot)
	return p
}

// PromotoraModelFromDomain creates a persistence model from a domain Promotora
func PromotoraModelFromDomain(p *crm.Promotora) *PromotoraModel {
	m := &PromotoraModel{
		Nome:           p.Nome,
		BancoID:        p.BancoID,
		CNPJ:           p.CNPJ,
		Email:          p.Email,
		Telefone:       p.Telefone,
		Contato:        p.Contato,
		ComissaoPadrao: p.ComissaoPadrao,
	}
	m.setTenantRoot(p.TenantAggregateRoot)
	return m
}

// PropostaModel is the persistence model for the Proposta aggregate.
type PropostaModel struct {
	TenantAggregateModel
	ClienteID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	BancoID     *uuid.UUID         `gorm:"type:uuid;index"`
	ProdutoID   *uuid.UUID         `gorm:"type:uuid;index"`
	Valor       decimal.Decimal    `gorm:"type:decimal(15,2);not null"`
	Finalidade  string             `gorm:"type:varchar(200)"`
	Observacoes string             `gorm:"type:varchar(500)"`
	Status      crm.PropostaStatus `gorm:"type:varchar(20);not null;default:'rascunho';index"`
	DataDecisao *time.Time
}

// TableName returns the table name for GORM
func (PropostaModel) TableName() string {
	return "propostas"
}

// ToDomain converts the persistence model to a domain Proposta
func (m *PropostaModel) ToDomain() *crm.Proposta {
	p := &crm.Proposta{
		ClienteID:   m.ClienteID,
		BancoID:     m.BancoID,
		ProdutoID:   m.ProdutoID,
		Valor:       m.Valor,
		Finalidade:  m.Finalidade,
		Observacoes: m.Observacoes,
		Status:      m.Status,
		DataDecisao: m.DataDecisao,
	}
	m.fillTenantRoot(&p.TenantAggregateRoot)
	return p
}

// PropostaModelFromDomain creates a persistence model from a domain Proposta
func PropostaModelFromDomain(p *crm.Proposta) *PropostaModel {
	m := &PropostaModel{
		ClienteID:   p.ClienteID,
		BancoID:     p.BancoID,
		ProdutoID:   p.ProdutoID,
		Valor:       p.Valor,
		Finalidade:  p.Finalidade,
		Observacoes: p.Observacoes,
		Status:      p.Status,
		DataDecisao: p.DataDecisao,
	}
	m.setTenantRoot(p.TenantAggregateRoot)
	return m
}

// ComissaoModel is the persistence model for the Comissao aggregate.
type ComissaoModel struct {
	TenantAggregateModel
	PropostaID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	ValorComissao      decimal.Decimal       `gorm:"type:decimal(15,2);not null"`
	PercentualComissao *decimal.Decimal      `gorm:"type:decimal(5,2)"`
	DataPrevisao       *time.Time            `gorm:"type:date"`
	DataRecebimento    *time.Time            `gorm:"type:date"`
	StatusRecebimento  crm.StatusRecebimento `gorm:"type:varchar(20);not null;default:'pendente'"`
	Observacao         string                `gorm:"type:varchar(500)"`
	UsuarioID          *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ComissaoModel) TableName() string {
	return "comissoes"
}

// ToDomain converts the persistence model to a domain Comissao
func (m *ComissaoModel) ToDomain() *crm.Comissao {
	c := &crm.Comissao{
		PropostaID:         m.PropostaID,
		ValorComissao:      m.ValorComissao,
		PercentualComissao: m.PercentualComissao,
		DataPrevisao:       m.DataPrevisao,
		DataRecebimento:    m.DataRecebimento,
		StatusRecebimento:  m.StatusRecebimento,
		Observacao:         m.Observacao,
		UsuarioID:          m.UsuarioID,
	}
	m.fillTenantRoot(&c.TenantAggregateRoot)
	return c
}

// ComissaoModelFromDomain creates a persistence model from a domain Comissao
func ComissaoModelFromDomain(c *crm.Comissao) *ComissaoModel {
	m := &ComissaoModel{
		PropostaID:         c.PropostaID,
		ValorComissao:      c.ValorComissao,
		PercentualComissao: c.PercentualComissao,
		DataPrevisao:       c.DataPrevisao,
		DataRecebimento:    c.DataRecebimento,
		StatusRecebimento:  c.StatusRecebimento,
		Observacao:         c.Observacao,
		UsuarioID:          c.UsuarioID,
	}
	m.setTenantRoot(c.TenantAggregateRoot)
	return m
}

// DocumentoModel is the persistence model for proposta documentos.
type DocumentoModel struct {
	TenantAggregateModel
	PropostaID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	FileName    string              `gorm:"type:varchar(255);not null"`
	ContentType string              `gorm:"type:varchar(100);not null"`
	Size        int64               `gorm:"not null"`
	StorageKey  string              `gorm:"type:varchar(500);not null;uniqueIndex"`
	Status      crm.DocumentoStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	UploadedBy  *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DocumentoModel) TableName() string {
	return "proposta_documentos"
}

// ToDomain converts the persistence model to a domain Documento
func (m *DocumentoModel) ToDomain() *crm.Documento {
	d := &crm.Documento{
		PropostaID:  m.PropostaID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		Size:        m.Size,
		StorageKey:  m.StorageKey,
		Status:      m.Status,
		UploadedBy:  m.UploadedBy,
	}
	m.fillTenantRoot(&d.TenantAggregateRoot)
	return d
}

// DocumentoModelFromDomain creates a persistence model from a domain Documento
func DocumentoModelFromDomain(d *crm.Documento) *DocumentoModel {
	m := &DocumentoModel{
		PropostaID:  d.PropostaID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Status:      d.Status,
		UploadedBy:  d.UploadedBy,
	}
	m.setTenantRoot(d.TenantAggregateRoot)
	return m
}
