package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var bancoList = listSpec{
	searchColumns: []string{"nome", "cnpj", "email"},
	filterColumns: map[string]string{"ativo": "ativo"},
	sortFields:    bancoSortFields,
	defaultSort:   "nome",
	defaultDir:    "asc",
}

// GormBancoRepository implements crm.BancoRepository using GORM
type GormBancoRepository struct {
	db *gorm.DB
}

// NewGormBancoRepository creates a new GormBancoRepository
func NewGormBancoRepository(db *gorm.DB) *GormBancoRepository {
	return &GormBancoRepository{db: db}
}

func (r *GormBancoRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.BancoModel{}), tenantID)
}

// FindByID finds a banco of the tenant
func (r *GormBancoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Banco, error) {
	var model models.BancoModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists bancos matching the filter
func (r *GormBancoRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Banco, error) {
	var rows []models.BancoModel
	if err := bancoList.applyFilter(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	bancos := make([]crm.Banco, len(rows))
	for i := range rows {
		bancos[i] = *rows[i].ToDomain()
	}
	return bancos, nil
}

// Count counts bancos matching the filter, ignoring paging
func (r *GormBancoRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := bancoList.applyConditions(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a banco
func (r *GormBancoRepository) Save(ctx context.Context, banco *crm.Banco) error {
	return saveVersioned(ctx, r.db, &banco.TenantAggregateRoot, models.BancoModelFromDomain(banco))
}

// Delete removes a banco of the tenant
func (r *GormBancoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(forTenant(r.db.WithContext(ctx), tenantID).Delete(&models.BancoModel{}, "id = ?", id))
}

// FindOptions lists bancos as options ordered by nome
func (r *GormBancoRepository) FindOptions(ctx context.Context, tenantID uuid.UUID, onlyActive bool) ([]crm.Option, error) {
	options := make([]crm.Option, 0)
	query := r.scoped(ctx, tenantID).Select("id", "nome")
	if onlyActive {
		query = query.Where("ativo = ?", true)
	}
	err := query.Order("nome ASC").Scan(&options).Error
	return options, err
}

// FindLatest returns the most recently created banco of the tenant
func (r *GormBancoRepository) FindLatest(ctx context.Context, tenantID uuid.UUID) (*crm.Banco, error) {
	var model models.BancoModel
	if err := r.scoped(ctx, tenantID).Order("created_at DESC").First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

var _ crm.BancoRepository = (*GormBancoRepository)(nil)
