package activity

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecorderName identifies the recorder in idempotency keys and logs
const RecorderName = "activity-recorder"

var changeActions = map[crm.ChangeAction]activity.Action{
	crm.ActionCreated: activity.ActionCreate,
	crm.ActionUpdated: activity.ActionUpdate,
	crm.ActionDeleted: activity.ActionDelete,
}

// Recorder appends an activity log entry for every crm record change.
// It runs as an event bus subscriber so the services never write the log themselves.
type Recorder struct {
	repo   activity.Repository
	users  identity.UserRepository
	logger *zap.Logger
}

// NewRecorder creates a new Recorder
func NewRecorder(repo activity.Repository, users identity.UserRepository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, users: users, logger: logger}
}

// Name returns the handler name
func (r *Recorder) Name() string {
	return RecorderName
}

// EventTypes returns the event types this handler is interested in
func (r *Recorder) EventTypes() []string {
	return crm.AllEventTypes()
}

// Handle converts a RecordChangedEvent into an activity log entry
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*crm.RecordChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	action, ok := changeActions[changed.Action]
	if !ok {
		return fmt.Errorf("unexpected change action: %s", changed.Action)
	}

	entry, err := activity.NewLog(changed.TenantID(), action, activity.EntityType(changed.Entity))
	if err != nil {
		return err
	}
	entry.WithActor(r.resolveActor(ctx, changed)).
		WithEntity(changed.AggregateID(), changed.EntityName).
		WithChange(changed.Details, changed.Previous, changed.Current).
		At(changed.OccurredAt())

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to append activity log",
			zap.String("event_type", changed.EventType()),
			zap.String("entity_id", changed.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

// resolveActor loads the user's name and email. An unknown user still keeps its id.
func (r *Recorder) resolveActor(ctx context.Context, event *crm.RecordChangedEvent) activity.Actor {
	actorID := event.ActorID()
	if actorID == nil {
		return activity.Actor{}
	}
	actor := activity.Actor{UserID: *actorID}
	if r.users == nil {
		return actor
	}

	user, err := r.users.FindByID(ctx, *actorID)
	if err != nil {
		r.logger.Debug("Activity actor not resolved",
			zap.String("user_id", actorID.String()),
			zap.Error(err))
		return actor
	}
	actor.UserEmail = user.Email
	actor.UserName = user.DisplayName()
	return actor
}
