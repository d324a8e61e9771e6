// Package tenant scopes GORM statements to the empresa that owns the rows.
//
// Repositories scope every statement explicitly with TenantScope. The Guard
// registers GORM callbacks that add the same condition to statements on
// tenant-owned tables whenever the request context carries a tenant and the
// statement forgot its own filter.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultColumn is the tenant column on every tenant-owned table
const DefaultColumn = "tenant_id"

var (
	// ErrTenantIDRequired is returned when a guarded statement runs without a tenant
	ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

	// ErrInvalidTenantID is returned when the context tenant is not a UUID
	ErrInvalidTenantID = errors.New("invalid tenant_id format")
)

// TenantScope restricts a query to one tenant
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(DefaultColumn+" = ?", tenantID)
	}
}
