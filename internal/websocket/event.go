package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"

	// EventTypeReconciled fires when the oracle has rebalanced a budget's
	// categories
	EventTypeReconciled EventType = "reconciled"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeIncome   EntityType = "income"
	EntityTypeBudget   EntityType = "budget"
	EntityTypeCategory EntityType = "category"
	EntityTypeSavings  EntityType = "savings"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "budget.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "budget"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// IncomeCreated creates an income.created event
func IncomeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeIncome, payload)
}

// IncomeUpdated creates an income.updated event
func IncomeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeIncome, payload)
}

// IncomeDeleted creates an income.deleted event
func IncomeDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeIncome, payload)
}

// BudgetCreated creates a budget.created event
func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetDeleted creates a budget.deleted event
func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// CategoryReconciled creates a category.reconciled event carrying the
// budget's post-reconciliation category set
func CategoryReconciled(payload interface{}) Event {
	return NewEvent(EventTypeReconciled, EntityTypeCategory, payload)
}

// CategoryUpdated creates a category.updated event
func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

// SavingsCreated creates a savings.created event
func SavingsCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeSavings, payload)
}

// SavingsUpdated creates a savings.updated event
func SavingsUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSavings, payload)
}

// SavingsDeleted creates a savings.deleted event
func SavingsDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSavings, payload)
}
