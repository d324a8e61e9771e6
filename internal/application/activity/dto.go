package activity

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// ListRequest holds the activity log query string
type ListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	UserID     string `form:"user_id"`
	EntityType string `form:"entity_type"`
	Action     string `form:"action"`
}

// LogResponse is one activity log entry
type LogResponse struct {
	ID            uuid.UUID      `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	UserID        *uuid.UUID     `json:"user_id"`
	UserEmail     string         `json:"user_email"`
	UserName      string         `json:"user_name"`
	Action        string         `json:"action"`
	ActionLabel   string         `json:"action_label"`
	EntityType    string         `json:"entity_type"`
	EntityLabel   string         `json:"entity_label"`
	EntityID      *uuid.UUID     `json:"entity_id"`
	EntityName    string         `json:"entity_name"`
	Details       map[string]any `json:"details"`
	PreviousValue map[string]any `json:"previous_value"`
	NewValue      map[string]any `json:"new_value"`
}

// ListResponse is one page of the activity log
type ListResponse struct {
	Data       []LogResponse `json:"data"`
	Count      int64         `json:"count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// ToLogResponse converts a domain Log to LogResponse
func ToLogResponse(l *activity.Log) LogResponse {
	return LogResponse{
		ID:            l.ID,
		Timestamp:     l.Timestamp,
		UserID:        l.UserID,
		UserEmail:     l.UserEmail,
		UserName:      l.UserName,
		Action:        string(l.Action),
		ActionLabel:   l.Action.Label(),
		EntityType:    string(l.EntityType),
		EntityLabel:   l.EntityType.Label(),
		EntityID:      l.EntityID,
		EntityName:    l.EntityName,
		Details:       l.Details,
		PreviousValue: l.PreviousValue,
		NewValue:      l.NewValue,
	}
}
