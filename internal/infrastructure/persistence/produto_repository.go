package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var produtoList = listSpec{
	searchColumns: []string{"nome", "tipo_credito"},
	filterColumns: map[string]string{"status": "status", "banco_id": "banco_id", "tipo_credito": "tipo_credito"},
	sortFields:    produtoSortFields,
	defaultSort:   "nome",
	defaultDir:    "asc",
}

// GormProdutoRepository implements crm.ProdutoRepository using GORM
type GormProdutoRepository struct {
	db *gorm.DB
}

// NewGormProdutoRepository creates a new GormProdutoRepository
func NewGormProdutoRepository(db *gorm.DB) *GormProdutoRepository {
	return &GormProdutoRepository{db: db}
}

func (r *GormProdutoRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.ProdutoModel{}), tenantID)
}

// FindByID finds a produto of the tenant
func (r *GormProdutoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Produto, error) {
	var model models.ProdutoModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists produtos matching the filter
func (r *GormProdutoRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Produto, error) {
	var rows []models.ProdutoModel
	if err := produtoList.applyFilter(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	produtos := make([]crm.Produto, len(rows))
	for i := range rows {
		produtos[i] = *rows[i].ToDomain()
	}
	return produtos, nil
}

// Count counts produtos matching the filter, ignoring paging
func (r *GormProdutoRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := produtoList.applyConditions(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a produto
func (r *GormProdutoRepository) Save(ctx context.Context, produto *crm.Produto) error {
	return saveVersioned(ctx, r.db, &produto.TenantAggregateRoot, models.ProdutoModelFromDomain(produto))
}

// Delete removes a produto of the tenant
func (r *GormProdutoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(forTenant(r.db.WithContext(ctx), tenantID).Delete(&models.ProdutoModel{}, "id = ?", id))
}

// FindActiveOptions lists ativo produtos ordered by nome, optionally for one banco
func (r *GormProdutoRepository) FindActiveOptions(ctx context.Context, tenantID uuid.UUID, bancoID *uuid.UUID) ([]crm.ProdutoOption, error) {
	options := make([]crm.ProdutoOption, 0)
	query := r.scoped(ctx, tenantID).
		Select("id", "nome", "tipo_credito", "banco_id").
		Where("status = ?", crm.ProdutoAtivo)
	if bancoID != nil {
		query = query.Where("banco_id = ?", *bancoID)
	}
	err := query.Order("nome ASC").Scan(&options).Error
	return options, err
}

// CountByBanco counts the produtos linked to a banco
func (r *GormProdutoRepository) CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx, tenantID).Where("banco_id = ?", bancoID).Count(&count).Error
	return count, err
}

var _ crm.ProdutoRepository = (*GormProdutoRepository)(nil)
