package identity

import (
	"context"

	"github.com/google/uuid"
)

// EmpresaRepository defines the interface for empresa persistence
type EmpresaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Empresa, error)
	Save(ctx context.Context, empresa *Empresa) error
	// Register stores a new empresa together with its first user, atomically
	Register(ctx context.Context, empresa *Empresa, admin *User) error
}

// UserRepository defines the interface for user persistence.
// Emails are unique across every empresa, so lookups by email are not tenant scoped.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}
