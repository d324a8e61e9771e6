package crm

import (
	"context"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// eventPublisher stamps pending aggregate events with the acting user and
// hands them to the bus. A publish failure never fails the mutation: the
// record is already stored.
type eventPublisher struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

func (p eventPublisher) publish(ctx context.Context, userID uuid.UUID, sources ...eventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	if len(events) == 0 || p.publisher == nil {
		return
	}
	if userID != uuid.Nil {
		for _, e := range events {
			if aware, ok := e.(shared.ActorAware); ok {
				aware.SetActor(userID)
			}
		}
	}
	if err := p.publisher.Publish(ctx, events...); err != nil {
		p.logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.String("first_type", events[0].EventType()),
			zap.Error(err))
	}
}
