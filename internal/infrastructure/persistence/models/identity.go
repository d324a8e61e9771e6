package models

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
)

// EmpresaModel is the persistence model for the Empresa (tenant) aggregate.
type EmpresaModel struct {
	AggregateModel
	Nome  string `gorm:"type:varchar(200);not null"`
	CNPJ  string `gorm:"column:cnpj;type:varchar(14)"`
	Ativo bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmpresaModel) TableName() string {
	return "empresas"
}

// ToDomain converts the persistence model to a domain Empresa
func (m *EmpresaModel) ToDomain() *identity.Empresa {
	return &identity.Empresa{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.toEntity(),
			Version:    m.Version,
		},
		Nome:  m.Nome,
		CNPJ:  m.CNPJ,
		Ativo: m.Ativo,
	}
}

// EmpresaModelFromDomain creates a persistence model from a domain Empresa
func EmpresaModelFromDomain(e *identity.Empresa) *EmpresaModel {
	m := &EmpresaModel{
		Nome:  e.Nome,
		CNPJ:  e.CNPJ,
		Ativo: e.Ativo,
	}
	m.setAggregateRoot(e.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate.
// Emails are unique across all empresas.
type UserModel struct {
	TenantAggregateModel
	Nome                string `gorm:"type:varchar(200);not null"`
	Email               string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash        string `gorm:"type:varchar(255);not null"`
	Ativo               bool   `gorm:"not null"`
	OnboardingCompleted bool   `gorm:"not null;default:false"`
	LastLoginAt         *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		Nome:                m.Nome,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		Ativo:               m.Ativo,
		OnboardingCompleted: m.OnboardingCompleted,
		LastLoginAt:         m.LastLoginAt,
	}
	m.fillTenantRoot(&u.TenantAggregateRoot)
	return u
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Nome:                u.Nome,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		Ativo:               u.Ativo,
		OnboardingCompleted: u.OnboardingCompleted,
		LastLoginAt:         u.LastLoginAt,
	}
	m.setTenantRoot(u.TenantAggregateRoot)
	return m
}
