package crm

import (
	"context"
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Option is an id/label pair used to fill selection lists
type Option struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

// ClienteOption adds the CPF to the cliente selection list
type ClienteOption struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
	CPF  string    `json:"cpf"`
}

// ProdutoOption adds the credit type and banco to the produto selection list
type ProdutoOption struct {
	ID          uuid.UUID  `json:"id"`
	Nome        string     `json:"nome"`
	TipoCredito string     `json:"tipo_credito"`
	BancoID     *uuid.UUID `json:"banco_id"`
}

// ClienteRepository persists clientes
type ClienteRepository interface {
	shared.Repository[Cliente]
	// ExistsByCPF reports whether another cliente of the tenant has the CPF.
	// excludeID may be uuid.Nil.
	ExistsByCPF(ctx context.Context, tenantID uuid.UUID, cpf string, excludeID uuid.UUID) (bool, error)
	FindOptions(ctx context.Context, tenantID uuid.UUID) ([]ClienteOption, error)
}

// BancoRepository persists bancos
type BancoRepository interface {
	shared.Repository[Banco]
	FindOptions(ctx context.Context, tenantID uuid.UUID, onlyActive bool) ([]Option, error)
	// FindLatest returns the most recently created banco of the tenant
	FindLatest(ctx context.Context, tenantID uuid.UUID) (*Banco, error)
}

// ProdutoRepository persists produtos
type ProdutoRepository interface {
	shared.Repository[Produto]
	// FindActiveOptions lists ativo produtos ordered by nome, narrowed to a
	// banco when bancoID is not nil
	FindActiveOptions(ctx context.Context, tenantID uuid.UUID, bancoID *uuid.UUID) ([]ProdutoOption, error)
	CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error)
}

// PromotoraRepository persists promotoras
type PromotoraRepository interface {
	shared.Repository[Promotora]
	FindOptions(ctx context.Context, tenantID uuid.UUID) ([]Option, error)
	CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error)
}

// PropostaRepository persists propostas. Delete removes the proposta with
// its comissoes and documentos atomically.
type PropostaRepository interface {
	shared.Repository[Proposta]
	CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error)
	CountByCliente(ctx context.Context, tenantID, clienteID uuid.UUID) (int64, error)
	// Stats aggregates counts and approved value for the dashboard
	Stats(ctx context.Context, tenantID uuid.UUID) (*PropostaStats, error)
	// DailyTrend returns per-day counts and values for the days from since
	// through until, both inclusive
	DailyTrend(ctx context.Context, tenantID uuid.UUID, since, until time.Time) ([]TrendPoint, error)
	// FindRecent returns the latest propostas with their cliente name
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]RecentProposta, error)
}

// ComissaoRepository persists comissoes
type ComissaoRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Comissao, error)
	// FindByProposta lists a proposta's commissions, newest first
	FindByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]Comissao, error)
	Save(ctx context.Context, comissao *Comissao) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// DocumentoRepository persists proposta documentos
type DocumentoRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Documento, error)
	FindActiveByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]Documento, error)
	Save(ctx context.Context, documento *Documento) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PropostaStats holds the raw proposta aggregates behind the dashboard KPIs
type PropostaStats struct {
	Total              int64
	ByStatus           map[PropostaStatus]int64
	ValorTotalAprovado decimal.Decimal
}

// TrendPoint is one day of proposta activity
type TrendPoint struct {
	Date  time.Time       `json:"date"`
	Count int64           `json:"count"`
	Valor decimal.Decimal `json:"valor"`
}

// RecentProposta is a proposta row enriched for the dashboard
type RecentProposta struct {
	ID          uuid.UUID       `json:"id"`
	ClienteNome string          `json:"cliente_nome"`
	Valor       decimal.Decimal `json:"valor"`
	Status      PropostaStatus  `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
