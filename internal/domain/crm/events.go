package crm

import (
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntityType identifies which table a change happened on
type EntityType string

const (
	EntityCliente   EntityType = "cliente"
	EntityBanco     EntityType = "banco"
	EntityProduto   EntityType = "produto"
	EntityPromotora EntityType = "promotora"
	EntityProposta  EntityType = "proposta"
	EntityComissao  EntityType = "comissao"
	EntityDocumento EntityType = "documento"
)

// Table returns the storage table the entity lives in
func (e EntityType) Table() string {
	switch e {
	case EntityComissao:
		return "comissoes"
	case EntityDocumento:
		return "proposta_documentos"
	default:
		return string(e) + "s"
	}
}

// ChangeAction describes what happened to a record
type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// EventType builds the event type string, e.g. "cliente.created"
func EventType(entity EntityType, action ChangeAction) string {
	return string(entity) + "." + string(action)
}

// AllEventTypes lists every change event the crm context publishes
func AllEventTypes() []string {
	entities := []EntityType{EntityCliente, EntityBanco, EntityProduto, EntityPromotora, EntityProposta, EntityComissao, EntityDocumento}
	actions := []ChangeAction{ActionCreated, ActionUpdated, ActionDeleted}
	types := make([]string, 0, len(entities)*len(actions))
	for _, e := range entities {
		for _, a := range actions {
			types = append(types, EventType(e, a))
		}
	}
	return types
}

// RecordChangedEvent is published whenever a crm record is created, updated or deleted
type RecordChangedEvent struct {
	shared.BaseDomainEvent
	Entity     EntityType     `json:"entity_type"`
	Action     ChangeAction   `json:"action"`
	EntityName string         `json:"entity_name"`
	Previous   map[string]any `json:"previous_value,omitempty"`
	Current    map[string]any `json:"new_value,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// NewRecordChangedEvent creates a change event for an aggregate
func NewRecordChangedEvent(
	entity EntityType,
	action ChangeAction,
	id, tenantID uuid.UUID,
	name string,
	previous, current map[string]any,
) *RecordChangedEvent {
	return &RecordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventType(entity, action), string(entity), id, tenantID),
		Entity:          entity,
		Action:          action,
		EntityName:      name,
		Previous:        previous,
		Current:         current,
	}
}

// WithDetails attaches free-form details to the event
func (e *RecordChangedEvent) WithDetails(details map[string]any) *RecordChangedEvent {
	e.Details = details
	return e
}
