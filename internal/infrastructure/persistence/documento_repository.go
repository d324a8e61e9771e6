package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentoRepository implements crm.DocumentoRepository using GORM
type GormDocumentoRepository struct {
	db *gorm.DB
}

// NewGormDocumentoRepository creates a new GormDocumentoRepository
func NewGormDocumentoRepository(db *gorm.DB) *GormDocumentoRepository {
	return &GormDocumentoRepository{db: db}
}

func (r *GormDocumentoRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return forTenant(r.db.WithContext(ctx).Model(&models.DocumentoModel{}), tenantID)
}

// FindByID finds a documento of the tenant, pending or active
func (r *GormDocumentoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Documento, error) {
	var model models.DocumentoModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByProposta lists the confirmed documentos of a proposta, newest first
func (r *GormDocumentoRepository) FindActiveByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]crm.Documento, error) {
	var rows []models.DocumentoModel
	if err := r.scoped(ctx, tenantID).
		Where("proposta_id = ? AND status = ?", propostaID, crm.DocumentoActive).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]crm.Documento, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// Save creates or updates a documento
func (r *GormDocumentoRepository) Save(ctx context.Context, documento *crm.Documento) error {
	return saveVersioned(ctx, r.db, &documento.TenantAggregateRoot, models.DocumentoModelFromDomain(documento))
}

// Delete removes a documento of the tenant
func (r *GormDocumentoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(forTenant(r.db.WithContext(ctx), tenantID).Delete(&models.DocumentoModel{}, "id = ?", id))
}

var _ crm.DocumentoRepository = (*GormDocumentoRepository)(nil)
