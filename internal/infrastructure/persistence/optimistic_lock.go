package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// saveVersioned inserts an aggregate that was never stored, otherwise
// updates every column while the row still holds the version the aggregate
// was loaded with. A stale or deleted row yields ErrConcurrencyConflict.
func saveVersioned(ctx context.Context, db *gorm.DB, root *shared.TenantAggregateRoot, model any) error {
	if root.PersistedVersion() == 0 {
		if err := db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		root.MarkPersisted()
		return nil
	}

	result := forTenant(db.WithContext(ctx).Model(model), root.TenantID).
		Where("version = ?", root.PersistedVersion()).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	root.MarkPersisted()
	return nil
}
