package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var propostaList = listSpec{
	searchColumns: []string{"finalidade", "observacoes"},
	searchSQL:     "cliente_id IN (SELECT id FROM clientes WHERE nome ILIKE ?)",
	filterColumns: map[string]string{
		"status":     "status",
		"cliente_id": "cliente_id",
		"banco_id":   "banco_id",
		"produto_id": "produto_id",
	},
	sortFields:  propostaSortFields,
	defaultSort: "created_at",
	defaultDir:  "desc",
}

// GormPropostaRepository implements crm.PropostaRepository using GORM
type GormPropostaRepository struct {
	db *gorm.DB
}

// NewGormPropostaRepository creates a new GormPropostaRepository
func NewGormPropostaRepository(db *gorm.DB) *GormPropostaRepository {
	return &GormPropostaRepository{db: db}
}

func (r *GormPropostaRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.PropostaModel{}), tenantID)
}

// FindByID finds a proposta of the tenant
func (r *GormPropostaRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Proposta, error) {
	var model models.PropostaModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists propostas matching the filter
func (r *GormPropostaRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Proposta, error) {
	var rows []models.PropostaModel
	if err := propostaList.applyFilter(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	propostas := make([]crm.Proposta, len(rows))
	for i := range rows {
		propostas[i] = *rows[i].ToDomain()
	}
	return propostas, nil
}

// Count counts propostas matching the filter, ignoring paging
func (r *GormPropostaRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := propostaList.applyConditions(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a proposta
func (r *GormPropostaRepository) Save(ctx context.Context, proposta *crm.Proposta) error {
	return saveVersioned(ctx, r.db, &proposta.TenantAggregateRoot, models.PropostaModelFromDomain(proposta))
}

// Delete removes a proposta of the tenant with its comissoes and documento
// rows in one transaction
func (r *GormPropostaRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewGormComissaoRepository(tx).DeleteByProposta(ctx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete comissoes: %w", err)
		}
		if err := forTenant(tx, tenantID).Delete(&models.DocumentoModel{}, "proposta_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete documentos: %w", err)
		}
		return deleteResult(forTenant(tx, tenantID).Delete(&models.PropostaModel{}, "id = ?", id))
	})
}

// CountByBanco counts the propostas sent to a banco
func (r *GormPropostaRepository) CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx, tenantID).Where("banco_id = ?", bancoID).Count(&count).Error
	return count, err
}

// CountByCliente counts the propostas of a cliente
func (r *GormPropostaRepository) CountByCliente(ctx context.Context, tenantID, clienteID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx, tenantID).Where("cliente_id = ?", clienteID).Count(&count).Error
	return count, err
}

type statusAggregate struct {
	Status crm.PropostaStatus
	Total  int64
	Valor  decimal.Decimal
}

// Stats aggregates proposta counts per status and the approved value
func (r *GormPropostaRepository) Stats(ctx context.Context, tenantID uuid.UUID) (*crm.PropostaStats, error) {
	var rows []statusAggregate
	err := r.scoped(ctx, tenantID).
		Select("status, COUNT(*) AS total, COALESCE(SUM(valor), 0) AS valor").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &crm.PropostaStats{
		ByStatus:           make(map[crm.PropostaStatus]int64, len(crm.AllPropostaStatuses())),
		ValorTotalAprovado: decimal.Zero,
	}
	for _, s := range crm.AllPropostaStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, row := range rows {
		stats.Total += row.Total
		stats.ByStatus[row.Status] = row.Total
		if row.Status == crm.PropostaAprovada {
			stats.ValorTotalAprovado = row.Valor
		}
	}
	return stats, nil
}

type trendRow struct {
	CreatedAt time.Time
	Valor     decimal.Decimal
}

// DailyTrend groups propostas created from since through the calendar day of
// until. Days are taken in the location of since, and days without propostas
// are included.
func (r *GormPropostaRepository) DailyTrend(ctx context.Context, tenantID uuid.UUID, since, until time.Time) ([]crm.TrendPoint, error) {
	loc := since.Location()
	start := truncateDay(since, loc)
	end := truncateDay(until, loc)

	var rows []trendRow
	err := r.scoped(ctx, tenantID).
		Select("created_at, valor").
		Where("created_at >= ? AND created_at < ?", since, end.AddDate(0, 0, 1)).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]crm.TrendPoint, 0)
	index := make(map[string]int)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		index[day.Format(time.DateOnly)] = len(points)
		points = append(points, crm.TrendPoint{Date: day, Valor: decimal.Zero})
	}
	for _, row := range rows {
		key := row.CreatedAt.In(loc).Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			continue
		}
		points[i].Count++
		points[i].Valor = points[i].Valor.Add(row.Valor)
	}
	return points, nil
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// FindRecent returns the latest propostas with their cliente nome
func (r *GormPropostaRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]crm.RecentProposta, error) {
	recent := make([]crm.RecentProposta, 0, limit)
	err := r.db.WithContext(ctx).
		Table("propostas").
		Select("propostas.id, COALESCE(clientes.nome, '') AS cliente_nome, propostas.valor, propostas.status, propostas.created_at").
		Joins("LEFT JOIN clientes ON clientes.id = propostas.cliente_id").
		Where("propostas.tenant_id = ?", tenantID).
		Order("propostas.created_at DESC").
		Limit(limit).
		Scan(&recent).Error
	return recent, err
}

var _ crm.PropostaRepository = (*GormPropostaRepository)(nil)
