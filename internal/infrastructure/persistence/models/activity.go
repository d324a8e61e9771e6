package models

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// ActivityLogModel is the persistence model for activity log entries.
// Rows are append-only.
type ActivityLogModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_activity_logs_tenant_ts,priority:1"`
	Timestamp     time.Time           `gorm:"not null;index:idx_activity_logs_tenant_ts,priority:2"`
	UserID        *uuid.UUID          `gorm:"type:uuid;index"`
	UserEmail     string              `gorm:"type:varchar(255)"`
	UserName      string              `gorm:"type:varchar(200)"`
	Action        activity.Action     `gorm:"type:varchar(20);not null"`
	EntityType    activity.EntityType `gorm:"type:varchar(20);not null"`
	EntityID      *uuid.UUID          `gorm:"type:uuid"`
	EntityName    string              `gorm:"type:varchar(255)"`
	Details       map[string]any      `gorm:"type:jsonb;serializer:json"`
	PreviousValue map[string]any      `gorm:"type:jsonb;serializer:json"`
	NewValue      map[string]any      `gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the persistence model to a domain log entry
func (m *ActivityLogModel) ToDomain() *activity.Log {
	return &activity.Log{
		ID:            m.ID,
		TenantID:      m.TenantID,
		Timestamp:     m.Timestamp,
		UserID:        m.UserID,
		UserEmail:     m.UserEmail,
		UserName:      m.UserName,
		Action:        m.Action,
		EntityType:    m.EntityType,
		EntityID:      m.EntityID,
		EntityName:    m.EntityName,
		Details:       m.Details,
		PreviousValue: m.PreviousValue,
		NewValue:      m.NewValue,
		CreatedAt:     m.CreatedAt,
	}
}

// ActivityLogModelFromDomain creates a persistence model from a domain log entry
func ActivityLogModelFromDomain(l *activity.Log) *ActivityLogModel {
	return &ActivityLogModel{
		ID:            l.ID,
		TenantID:      l.TenantID,
		Timestamp:     l.Timestamp,
		UserID:        l.UserID,
		UserEmail:     l.UserEmail,
		UserName:      l.UserName,
		Action:        l.Action,
		EntityType:    l.EntityType,
		EntityID:      l.EntityID,
		EntityName:    l.EntityName,
		Details:       l.Details,
		PreviousValue: l.PreviousValue,
		NewValue:      l.NewValue,
		CreatedAt:     l.CreatedAt,
	}
}
