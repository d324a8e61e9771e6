package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var clienteList = listSpec{
	searchColumns: []string{"nome", "cpf", "email", "telefone"},
	sortFields:    clienteSortFields,
	defaultSort:   "created_at",
	defaultDir:    "desc",
}

// GormClienteRepository implements crm.ClienteRepository using GORM
type GormClienteRepository struct {
	db *gorm.DB
}

// NewGormClienteRepository creates a new GormClienteRepository
func NewGormClienteRepository(db *gorm.DB) *GormClienteRepository {
	return &GormClienteRepository{db: db}
}

func (r *GormClienteRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.ClienteModel{}), tenantID)
}

// FindByID finds a cliente of the tenant
func (r *GormClienteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Cliente, error) {
	var model models.ClienteModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists clientes matching the filter
func (r *GormClienteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Cliente, error) {
	var rows []models.ClienteModel
	if err := clienteList.applyFilter(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	clientes := make([]crm.Cliente, len(rows))
	for i := range rows {
		clientes[i] = *rows[i].ToDomain()
	}
	return clientes, nil
}

// Count counts clientes matching the filter, ignoring paging
func (r *GormClienteRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := clienteList.applyConditions(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a cliente
func (r *GormClienteRepository) Save(ctx context.Context, cliente *crm.Cliente) error {
	return saveVersioned(ctx, r.db, &cliente.TenantAggregateRoot, models.ClienteModelFromDomain(cliente))
}

// Delete removes a cliente of the tenant
func (r *GormClienteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(forTenant(r.db.WithContext(ctx), tenantID).Delete(&models.ClienteModel{}, "id = ?", id))
}

// ExistsByCPF reports whether another cliente of the tenant already uses the CPF
func (r *GormClienteRepository) ExistsByCPF(ctx context.Context, tenantID uuid.UUID, cpf string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.scoped(ctx, tenantID).Where("cpf = ?", cpf)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindOptions lists every cliente as an option, ordered by nome
func (r *GormClienteRepository) FindOptions(ctx context.Context, tenantID uuid.UUID) ([]crm.ClienteOption, error) {
	options := make([]crm.ClienteOption, 0)
	err := r.scoped(ctx, tenantID).
		Select("id", "nome", "cpf").
		Order("nome ASC").
		Scan(&options).Error
	return options, err
}

var _ crm.ClienteRepository = (*GormClienteRepository)(nil)
