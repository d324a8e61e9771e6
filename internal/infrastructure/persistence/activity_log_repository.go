package persistence

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var timestampColumn = clause.Column{Name: "timestamp"}

// GormActivityLogRepository implements activity.Repository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Find returns one page of the tenant's log, newest first, and the total match count
func (r *GormActivityLogRepository) Find(ctx context.Context, tenantID uuid.UUID, filter activity.Filter, page, pageSize int) ([]activity.Log, int64, error) {
	base := func() *gorm.DB {
		return r.applyFilter(
			forTenant(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), tenantID),
			filter,
		)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	from, to := shared.PageRange(page, pageSize)
	var rows []models.ActivityLogModel
	if err := base().
		Order(clause.OrderByColumn{Column: timestampColumn, Desc: true}).
		Offset(from).
		Limit(to - from + 1).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]activity.Log, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, total, nil
}

func (r *GormActivityLogRepository) applyFilter(query *gorm.DB, filter activity.Filter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where(clause.Gte{Column: timestampColumn, Value: *filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(clause.Lte{Column: timestampColumn, Value: *filter.EndDate})
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	return query
}

// DistinctUsers lists the users found in the log, ordered by name.
// When a user appears under several names the first one in that order wins.
func (r *GormActivityLogRepository) DistinctUsers(ctx context.Context, tenantID uuid.UUID) ([]activity.UserRef, error) {
	var rows []models.ActivityLogModel
	if err := forTenant(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), tenantID).
		Select("user_id", "user_name", "user_email").
		Where("user_id IS NOT NULL").
		Order("user_name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(rows))
	users := make([]activity.UserRef, 0)
	for _, row := range rows {
		if row.UserID == nil {
			continue
		}
		if _, ok := seen[*row.UserID]; ok {
			continue
		}
		seen[*row.UserID] = struct{}{}
		users = append(users, activity.UserRef{
			UserID:    *row.UserID,
			UserName:  row.UserName,
			UserEmail: row.UserEmail,
		})
	}
	return users, nil
}

// Append inserts a log entry
func (r *GormActivityLogRepository) Append(ctx context.Context, log *activity.Log) error {
	return r.db.WithContext(ctx).Create(models.ActivityLogModelFromDomain(log)).Error
}

var _ activity.Repository = (*GormActivityLogRepository)(nil)
