package store

import "log"

// ------------------------------
// Event System
// ------------------------------
//
// The repository emits typed events when leads change status, notes are
// updated, bulk actions run, or a sync replaces the table. Register listeners
// to react to these changes.
//
// Example usage:
//
//	repo.RegisterEventListener(store.OnLeadStatusChangedEvent, func(event store.Event) error {
//	    ev := event.(store.LeadStatusChangedEvent)
//	    log.Printf("Lead moved %s -> %s: %s", ev.Previous, ev.Lead.Status, ev.Lead.URL)
//	    return nil
//	})
//
//	repo.RegisterEventListener(store.OnTableReplacedEvent, func(event store.Event) error {
//	    ev := event.(store.TableReplacedEvent)
//	    log.Printf("Lead table replaced with %d leads", ev.Count)
//	    return nil
//	})
//
// Event is the common interface for all repository events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the repository.
type EventKind int

const (
	// OnLeadStatusChangedEvent is emitted when a single lead changes status.
	OnLeadStatusChangedEvent EventKind = iota
	// OnLeadNotesUpdatedEvent is emitted when a single lead's notes are replaced.
	OnLeadNotesUpdatedEvent
	// OnBulkStatusAppliedEvent is emitted when a bulk action sets one status on many leads.
	OnBulkStatusAppliedEvent
	// OnBulkNotesAppendedEvent is emitted when a bulk action appends a note to many leads.
	OnBulkNotesAppendedEvent
	// OnTableReplacedEvent is emitted when a sync replaces the whole table.
	OnTableReplacedEvent
)

func (k EventKind) String() string {
	switch k {
	case OnLeadStatusChangedEvent:
		return "lead_status_changed"
	case OnLeadNotesUpdatedEvent:
		return "lead_notes_updated"
	case OnBulkStatusAppliedEvent:
		return "bulk_status_applied"
	case OnBulkNotesAppendedEvent:
		return "bulk_notes_appended"
	case OnTableReplacedEvent:
		return "table_replaced"
	default:
		return "unknown"
	}
}

// LeadStatusChangedEvent is emitted after a lead's status change is persisted.
type LeadStatusChangedEvent struct {
	Lead     Lead
	Previous Status
}

func (e LeadStatusChangedEvent) Kind() EventKind { return OnLeadStatusChangedEvent }

// LeadNotesUpdatedEvent is emitted after a lead's notes are replaced and persisted.
type LeadNotesUpdatedEvent struct {
	Lead Lead
}

func (e LeadNotesUpdatedEvent) Kind() EventKind { return OnLeadNotesUpdatedEvent }

// BulkStatusAppliedEvent is emitted after a bulk status change is persisted.
type BulkStatusAppliedEvent struct {
	URLs   []string
	Status Status
}

func (e BulkStatusAppliedEvent) Kind() EventKind { return OnBulkStatusAppliedEvent }

// BulkNotesAppendedEvent is emitted after a bulk note append is persisted.
// Note is the timestamped line that was appended to each lead.
type BulkNotesAppendedEvent struct {
	URLs []string
	Note string
}

func (e BulkNotesAppendedEvent) Kind() EventKind { return OnBulkNotesAppendedEvent }

// TableReplacedEvent is emitted after a sync replaces and persists the table.
type TableReplacedEvent struct {
	Count int
}

func (e TableReplacedEvent) Kind() EventKind { return OnTableReplacedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Register listeners during startup, before the repository is shared;
// listeners are called synchronously in registration order after the
// mutation is persisted.
func (r *Repository) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if r.eventListeners == nil {
		r.eventListeners = make(map[EventKind][]EventListener)
	}
	r.eventListeners[eventKind] = append(r.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (r *Repository) emit(event Event) {
	listeners := r.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			log.Printf("Event listener error for %s: %v", event.Kind(), err)
		}
	}
}
