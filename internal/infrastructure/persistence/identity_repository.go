package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmpresaRepository implements identity.EmpresaRepository using GORM
type GormEmpresaRepository struct {
	db *gorm.DB
}

// NewGormEmpresaRepository creates a new GormEmpresaRepository
func NewGormEmpresaRepository(db *gorm.DB) *GormEmpresaRepository {
	return &GormEmpresaRepository{db: db}
}

// FindByID finds an empresa by ID
func (r *GormEmpresaRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Empresa, error) {
	var model models.EmpresaModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates an empresa
func (r *GormEmpresaRepository) Save(ctx context.Context, empresa *identity.Empresa) error {
	return r.db.WithContext(ctx).Save(models.EmpresaModelFromDomain(empresa)).Error
}

// Register inserts the empresa and its admin user in one transaction
func (r *GormEmpresaRepository) Register(ctx context.Context, empresa *identity.Empresa, admin *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.EmpresaModelFromDomain(empresa)).Error; err != nil {
			return err
		}
		return tx.Create(models.UserModelFromDomain(admin)).Error
	})
}

// GormUserRepository implements identity.UserRepository using GORM.
// Users are looked up across tenants because login happens before the tenant is known.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", identity.NormalizeEmail(email)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail reports whether any user already has the email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Save(models.UserModelFromDomain(user)).Error
}

var (
	_ identity.EmpresaRepository = (*GormEmpresaRepository)(nil)
	_ identity.UserRepository    = (*GormUserRepository)(nil)
)
