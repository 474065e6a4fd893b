package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers actions that change the SMP's standing in the
	// network: SML registration, deregistration and certificate migration.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers configuration housekeeping such as
	// maintaining the catalogue of known SML endpoints.
	CategoryOperations EventCategory = "operations"
)

// Action names the audited operation. Registration actions keep the
// identifiers used by existing SMP audit logs.
type Action string

const (
	ActionSMLCreate     Action = "smp-sml-create"
	ActionSMLUpdate     Action = "smp-sml-update"
	ActionSMLDelete     Action = "smp-sml-delete"
	ActionSMLUpdateCert Action = "smp-sml-update-cert"

	ActionSMLInfoCreate Action = "sml-info-create"
	ActionSMLInfoUpdate Action = "sml-info-update"
	ActionSMLInfoDelete Action = "sml-info-delete"
)

var actionCategories = map[Action]EventCategory{
	ActionSMLCreate:     CategoryCompliance,
	ActionSMLUpdate:     CategoryCompliance,
	ActionSMLDelete:     CategoryCompliance,
	ActionSMLUpdateCert: CategoryCompliance,

	ActionSMLInfoCreate: CategoryOperations,
	ActionSMLInfoUpdate: CategoryOperations,
	ActionSMLInfoDelete: CategoryOperations,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one append-only audit record. It is written exactly once per
// audited invocation and never mutated afterwards.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Action    Action
	// Subject is the primary identifier acted upon (SMP ID or SML info ID).
	Subject string
	// Args lists the further subject identifiers in the order they were
	// supplied: addresses, SML URL, certificate, migration date.
	Args    []string
	Success bool
	// ErrorClass and ErrorMessage are only set on failure.
	ErrorClass   string
	ErrorMessage string
	ActorID      string
	RequestID    string
}

// Category returns the category derived from the event's action.
func (e Event) Category() EventCategory {
	return e.Action.Category()
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
