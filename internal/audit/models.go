package audit

import (
	"time"

	id "milsabores/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategorySecurity covers authentication outcomes and corrupt credentials.
	CategorySecurity EventCategory = "security"

	// CategoryCommerce covers receipts issued at checkout.
	CategoryCommerce EventCategory = "commerce"

	// CategoryOperations covers routine session and storage activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID // zero for guests
	TabID     id.TabID
	Email     string
	Action    string
	Subject   string // receipt id, record key
	Reason    string
}

type AuditEvent string

const (
	// Session events
	EventUserRegistered   AuditEvent = "user_registered"
	EventSessionStarted   AuditEvent = "session_started"
	EventSessionEnded     AuditEvent = "session_ended"
	EventAuthFailed       AuditEvent = "auth_failed"
	EventSessionRecovered AuditEvent = "session_recovered"

	// Cart events
	EventCartRecovered AuditEvent = "cart_recovered"

	// Checkout events
	EventCheckoutCompleted AuditEvent = "checkout_completed"

	// Storage events
	EventMigrationApplied AuditEvent = "migration_applied"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthFailed:        CategorySecurity,
	EventSessionRecovered:  CategorySecurity,
	EventUserRegistered:    CategorySecurity,
	EventCheckoutCompleted: CategoryCommerce,

	EventSessionStarted:   CategoryOperations,
	EventSessionEnded:     CategoryOperations,
	EventCartRecovered:    CategoryOperations,
	EventMigrationApplied: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// NewEvent builds an Event for action with its category filled in.
func NewEvent(action AuditEvent) Event {
	return Event{Category: action.Category(), Action: string(action)}
}
