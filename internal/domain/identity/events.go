package identity

import (
	"github.com/aprovacrm/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeEmpresa = "Empresa"
	AggregateTypeUser    = "User"
)

// Identity domain event types
const (
	EventTypeEmpresaCreated      = "empresa.created"
	EventTypeUserCreated         = "user.created"
	EventTypeOnboardingCompleted = "user.onboarding_completed"
)

// EmpresaCreatedEvent is published when a new empresa registers
type EmpresaCreatedEvent struct {
	shared.BaseDomainEvent
	Nome string `json:"nome"`
}

// NewEmpresaCreatedEvent creates a new EmpresaCreatedEvent
func NewEmpresaCreatedEvent(e *Empresa) *EmpresaCreatedEvent {
	return &EmpresaCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmpresaCreated, AggregateTypeEmpresa, e.ID, e.ID),
		Nome:            e.Nome,
	}
}

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, u.TenantID),
		Nome:            u.Nome,
		Email:           u.Email,
	}
}

// OnboardingCompletedEvent is published when a user finishes the setup wizard
type OnboardingCompletedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewOnboardingCompletedEvent creates a new OnboardingCompletedEvent
func NewOnboardingCompletedEvent(u *User) *OnboardingCompletedEvent {
	return &OnboardingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOnboardingCompleted, AggregateTypeUser, u.ID, u.TenantID),
		Email:           u.Email,
	}
}
