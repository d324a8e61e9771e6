package activity

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service reads the activity log and records authentication entries
type Service struct {
	repo   activity.Repository
	logger *zap.Logger
}

// NewService creates a new activity Service
func NewService(repo activity.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns one page of the tenant's activity log, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req ListRequest) (*ListResponse, error) {
	filter, err := activity.ParseFilter(activity.FilterParams{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		UserID:     req.UserID,
		EntityType: req.EntityType,
		Action:     req.Action,
	})
	if err != nil {
		return nil, err
	}

	page := shared.Filter{Page: req.Page, PageSize: req.PageSize}.
		Normalize(activity.DefaultPageSize, activity.MaxPageSize)

	logs, total, err := s.repo.Find(ctx, tenantID, filter, page.Page, page.PageSize)
	if err != nil {
		return nil, err
	}

	data := make([]LogResponse, len(logs))
	for i := range logs {
		data[i] = ToLogResponse(&logs[i])
	}
	return &ListResponse{
		Data:       data,
		Count:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: shared.TotalPages(total, page.PageSize),
	}, nil
}

// Users lists the users that appear in the log, for the user filter
func (s *Service) Users(ctx context.Context, tenantID uuid.UUID) ([]activity.UserRef, error) {
	return s.repo.DistinctUsers(ctx, tenantID)
}

// RecordAuth appends a login or logout entry. Failures are logged and
// swallowed so that authentication never fails because of the audit trail.
func (s *Service) RecordAuth(ctx context.Context, tenantID uuid.UUID, action activity.Action, actor activity.Actor) {
	entry, err := activity.NewAuthLog(tenantID, action, actor)
	if err == nil {
		err = s.repo.Append(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("Failed to record auth activity",
			zap.String("tenant_id", tenantID.String()),
			zap.String("user_id", actor.UserID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
