package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormComissaoRepository implements crm.ComissaoRepository using GORM
type GormComissaoRepository struct {
	db *gorm.DB
}

// NewGormComissaoRepository creates a new GormComissaoRepository
func NewGormComissaoRepository(db *gorm.DB) *GormComissaoRepository {
	return &GormComissaoRepository{db: db}
}

func (r *GormComissaoRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.ComissaoModel{}), tenantID)
}

// FindByID finds a comissao of the tenant
func (r *GormComissaoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Comissao, error) {
	var model models.ComissaoModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProposta lists the commissions of a proposta, newest first
func (r *GormComissaoRepository) FindByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]crm.Comissao, error) {
	var rows []models.ComissaoModel
	if err := r.scoped(ctx, tenantID).
		Where("proposta_id = ?", propostaID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	comissoes := make([]crm.Comissao, len(rows))
	for i := range rows {
		comissoes[i] = *rows[i].ToDomain()
	}
	return comissoes, nil
}

// Save creates or updates a comissao
func (r *GormComissaoRepository) Save(ctx context.Context, comissao *crm.Comissao) error {
	return saveVersioned(ctx, r.db, &comissao.TenantAggregateRoot, models.ComissaoModelFromDomain(comissao))
}

// Delete removes a comissao of the tenant
func (r *GormComissaoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(forTenant(r.db.WithContext(ctx), tenantID).Delete(&models.ComissaoModel{}, "id = ?", id))
}

// DeleteByProposta removes every comissao of a proposta
func (r *GormComissaoRepository) DeleteByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) error {
	return forTenant(r.db.WithContext(ctx), tenantID).
		Delete(&models.ComissaoModel{}, "proposta_id = ?", propostaID).Error
}

var _ crm.ComissaoRepository = (*GormComissaoRepository)(nil)
