package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is raised by an aggregate and published after it is saved.
// EventType values follow "<aggregate>.<verb>", e.g. "proposta.status_changed".
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// ActorAware events record the user behind the change for the activity log.
type ActorAware interface {
	ActorID() *uuid.UUID
	SetActor(userID uuid.UUID)
}

// BaseDomainEvent is embedded by concrete events.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	At        time.Time `json:"timestamp"`
	Aggregate struct {
		ID   uuid.UUID `json:"id"`
		Type string    `json:"type"`
	} `json:"aggregate"`
	Tenant uuid.UUID  `json:"tenant_id"`
	Actor  *uuid.UUID `json:"actor_id,omitempty"`
}

func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	e := BaseDomainEvent{
		ID:     uuid.New(),
		Type:   eventType,
		At:     time.Now(),
		Tenant: tenantID,
	}
	e.Aggregate.ID = aggID
	e.Aggregate.Type = aggType
	return e
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate.ID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate.Type }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.Tenant }
func (e *BaseDomainEvent) ActorID() *uuid.UUID    { return e.Actor }

// SetActor ignores uuid.Nil.
func (e *BaseDomainEvent) SetActor(userID uuid.UUID) {
	if userID != uuid.Nil {
		e.Actor = &userID
	}
}
