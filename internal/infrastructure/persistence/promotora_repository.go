package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var promotoraList = listSpec{
	searchColumns: []string{"nome", "email", "contato", "cnpj"},
	filterColumns: map[string]string{"banco_id": "banco_id"},
	sortFields:    promotoraSortFields,
	defaultSort:   "nome",
	defaultDir:    "asc",
}

// GormPromotoraRepository implements crm.PromotoraRepository using GORM
type GormPromotoraRepository struct {
	db *gorm.DB
}

// NewGormPromotoraRepository creates a new GormPromotoraRepository
func NewGormPromotoraRepository(db *gorm.DB) *GormPromotoraRepository {
	return &GormPromotoraRepository{db: db}
}

func (r *GormPromotoraRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.PromotoraModel{}), tenantID)
}

// FindByID finds a promotora of the tenant
func (r *GormPromotoraRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Promotora, error) {
	var model models.PromotoraModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists promotoras matching the filter
func (r *GormPromotoraRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Promotora, error) {
	var rows []models.PromotoraModel
	if err := promotoraList.applyFilter(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	promotoras := make([]crm.Promotora, len(rows))
	for i := range rows {
		promotoras[i] = *rows[i].ToDomain()
	}
	return promotoras, nil
}

// Count counts promotoras matching the filter, ignoring paging
func (r *GormPromotoraRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := promotoraList.applyConditions(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a promotora
func (r *GormPromotoraRepository) Save(ctx context.Context, promotora *crm.Promotora) error {
	return saveVersioned(ctx, r.db, &promotora.TenantAggregateRoot, models.PromotoraModelFromDomain(promotora))
}

// Delete removes a promotora of the tenant
func (r *GormPromotoraRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(forTenant(r.db.WithContext(ctx), tenantID).Delete(&models.PromotoraModel{}, "id = ?", id))
}

// FindOptions lists promotoras as options ordered by nome
func (r *GormPromotoraRepository) FindOptions(ctx context.Context, tenantID uuid.UUID) ([]crm.Option, error) {
	options := make([]crm.Option, 0)
	err := r.scoped(ctx, tenantID).Select("id", "nome").Order("nome ASC").Scan(&options).Error
	return options, err
}

// CountByBanco counts the promotoras working with a banco
func (r *GormPromotoraRepository) CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx, tenantID).Where("banco_id = ?", bancoID).Count(&count).Error
	return count, err
}

var _ crm.PromotoraRepository = (*GormPromotoraRepository)(nil)
