package activity

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores the activity log. Entries are never updated or deleted.
type Repository interface {
	// Find returns one page of logs, newest first, together with the total match count
	Find(ctx context.Context, tenantID uuid.UUID, filter Filter, page, pageSize int) ([]Log, int64, error)

	// DistinctUsers returns every user that appears in the log, ordered by name
	DistinctUsers(ctx context.Context, tenantID uuid.UUID) ([]UserRef, error)

	Append(ctx context.Context, log *Log) error
}
