package activity

import (
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is what a user did
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

var actionLabels = map[Action]string{
	ActionCreate: "Criação",
	ActionUpdate: "Atualização",
	ActionDelete: "Exclusão",
	ActionLogin:  "Login",
	ActionLogout: "Logout",
}

// IsValid reports whether the action is one of the known actions
func (a Action) IsValid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label returns the human readable action name
func (a Action) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

// EntityType is the kind of record an activity refers to
type EntityType string

const (
	EntityCliente   EntityType = "cliente"
	EntityBanco     EntityType = "banco"
	EntityProposta  EntityType = "proposta"
	EntityProduto   EntityType = "produto"
	EntityPromotora EntityType = "promotora"
	EntityComissao  EntityType = "comissao"
	EntityDocumento EntityType = "documento"
	EntityUser      EntityType = "user"
)

var entityLabels = map[EntityType]string{
	EntityCliente:   "Cliente",
	EntityBanco:     "Banco",
	EntityProposta:  "Proposta",
	EntityProduto:   "Produto",
	EntityPromotora: "Promotora",
	EntityComissao:  "Comissão",
	EntityDocumento: "Documento",
	EntityUser:      "Usuário",
}

// IsValid reports whether the entity type is one of the known types
func (e EntityType) IsValid() bool {
	_, ok := entityLabels[e]
	return ok
}

// Label returns the human readable entity name
func (e EntityType) Label() string {
	if l, ok := entityLabels[e]; ok {
		return l
	}
	return string(e)
}

// Log is one append-only entry of the activity log
type Log struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Timestamp     time.Time
	UserID        *uuid.UUID
	UserEmail     string
	UserName      string
	Action        Action
	EntityType    EntityType
	EntityID      *uuid.UUID
	EntityName    string
	Details       map[string]any
	PreviousValue map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}

// Actor identifies the user behind an activity
type Actor struct {
	UserID    uuid.UUID
	UserEmail string
	UserName  string
}

// NewLog creates a log entry stamped with the current time
func NewLog(tenantID uuid.UUID, action Action, entityType EntityType) (*Log, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewFieldError("tenant_id", "Empresa é obrigatória")
	}
	if !action.IsValid() {
		return nil, shared.NewFieldError("action", "Ação inválida")
	}
	if !entityType.IsValid() {
		return nil, shared.NewFieldError("entity_type", "Tipo de entidade inválido")
	}

	now := time.Now()
	return &Log{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Timestamp:  now,
		Action:     action,
		EntityType: entityType,
		CreatedAt:  now,
	}, nil
}

// WithActor records who performed the action
func (l *Log) WithActor(actor Actor) *Log {
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		l.UserID = &id
	}
	l.UserEmail = actor.UserEmail
	l.UserName = actor.UserName
	return l
}

// WithEntity records which record the action touched
func (l *Log) WithEntity(id uuid.UUID, name string) *Log {
	if id != uuid.Nil {
		l.EntityID = &id
	}
	l.EntityName = name
	return l
}

// WithChange attaches the before and after snapshots plus free-form details
func (l *Log) WithChange(details, previous, current map[string]any) *Log {
	l.Details = details
	l.PreviousValue = previous
	l.NewValue = current
	return l
}

// At overrides the timestamp, used when the log mirrors an event that already happened
func (l *Log) At(t time.Time) *Log {
	if !t.IsZero() {
		l.Timestamp = t
	}
	return l
}

// NewAuthLog builds the login or logout entry for a user
func NewAuthLog(tenantID uuid.UUID, action Action, actor Actor) (*Log, error) {
	if action != ActionLogin && action != ActionLogout {
		return nil, shared.NewFieldError("action", "Ação de autenticação inválida")
	}
	l, err := NewLog(tenantID, action, EntityUser)
	if err != nil {
		return nil, err
	}
	l.WithActor(actor).
		WithEntity(actor.UserID, actor.UserName).
		WithChange(map[string]any{"action": string(action)}, nil, nil)
	return l, nil
}

// UserRef is a user that appears in the activity log
type UserRef struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}
