package store

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a URL does not identify a lead in the table.
var ErrNotFound = errors.New("lead not found")

// ErrInvalidStatus is returned when a status value is not one of the
// recognized pipeline statuses.
var ErrInvalidStatus = errors.New("invalid status")

// noteTimestampLayout prefixes every bulk-appended note line.
const noteTimestampLayout = "2006-01-02 15:04"

// Repository holds the lead table in memory and writes it back to its Store
// after every mutation. Reads serve from memory only.
//
// Methods are safe for concurrent use. When a save fails the in-memory change
// is kept and the error is returned; the table and the file re-converge on the
// next successful save.
type Repository struct {
	mu    sync.RWMutex
	store *Store
	leads []Lead
	index map[string]int

	eventListeners map[EventKind][]EventListener
}

// NewRepository loads the persisted lead table into memory. An absent file
// starts an empty table; an unreadable one is an error.
func NewRepository(store *Store) (*Repository, error) {
	leads, err := store.Load()
	if err != nil {
		return nil, err
	}
	r := &Repository{
		store:          store,
		eventListeners: make(map[EventKind][]EventListener),
	}
	r.reset(leads)
	return r, nil
}

// reset swaps in a new table and rebuilds the URL index.
// Callers hold the write lock (or are still constructing the repository).
func (r *Repository) reset(leads []Lead) {
	r.leads = leads
	r.index = make(map[string]int, len(leads))
	for i, l := range leads {
		r.index[l.URL] = i
	}
}

// saveLocked persists the current table. Callers hold the write lock.
func (r *Repository) saveLocked() error {
	if err := r.store.Save(r.leads); err != nil {
		log.Printf("Failed to persist lead table: %v", err)
		return err
	}
	return nil
}

// ------------------------------
// Lead methods
// ------------------------------

// Leads returns a copy of the table in encounter order.
func (r *Repository) Leads() []Lead {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lead, len(r.leads))
	copy(out, r.leads)
	return out
}

// Len returns the number of leads in the table.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

func (r *Repository) Get(url string) (Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[url]
	if !ok {
		return Lead{}, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return r.leads[i], nil
}

// Filter returns leads matching the given status and subreddit selections,
// in encounter order. An empty selection leaves that axis unfiltered.
func (r *Repository) Filter(statuses []string, subreddits []string) []Lead {
	statusSet := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		statusSet[s] = true
	}
	subredditSet := make(map[string]bool, len(subreddits))
	for _, s := range subreddits {
		subredditSet[s] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if len(statusSet) > 0 && !statusSet[string(l.Status)] {
			continue
		}
		if len(subredditSet) > 0 && !subredditSet[l.Subreddit] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Subreddits returns the distinct subreddits in the table, sorted ascending.
func (r *Repository) Subreddits() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.leads))
	out := make([]string, 0, len(r.leads))
	for _, l := range r.leads {
		if seen[l.Subreddit] {
			continue
		}
		seen[l.Subreddit] = true
		out = append(out, l.Subreddit)
	}
	sort.Strings(out)
	return out
}

// SetStatus moves a lead to a new pipeline status and persists the table.
//
// It validates the status first and returns ErrInvalidStatus if it is not one
// of the recognized values. Emits a LeadStatusChangedEvent after a successful
// save.
func (r *Repository) SetStatus(url string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.Lock()
	i, ok := r.index[url]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	previous := r.leads[i].Status
	r.leads[i].Status = status
	lead := r.leads[i]
	err := r.saveLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.emit(LeadStatusChangedEvent{Lead: lead, Previous: previous})
	return nil
}

// SetNotes replaces a lead's notes (trimmed) and persists the table.
// Emits a LeadNotesUpdatedEvent after a successful save.
func (r *Repository) SetNotes(url string, notes string) error {
	r.mu.Lock()
	i, ok := r.index[url]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	r.leads[i].Notes = strings.TrimSpace(notes)
	lead := r.leads[i]
	err := r.saveLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.emit(LeadNotesUpdatedEvent{Lead: lead})
	return nil
}

// BulkSetStatus moves every given lead to the same status with a single save
// at the end. If any URL is unknown nothing is changed.
// Emits one BulkStatusAppliedEvent after a successful save.
func (r *Repository) BulkSetStatus(urls []string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.Lock()
	indices := make([]int, 0, len(urls))
	for _, url := range urls {
		i, ok := r.index[url]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		indices = append(indices, i)
	}
	for _, i := range indices {
		r.leads[i].Status = status
	}
	err := r.saveLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.emit(BulkStatusAppliedEvent{URLs: urls, Status: status})
	return nil
}

// BulkAppendNotes appends the same timestamped note line to every given lead
// with a single save at the end. The line is "\n[YYYY-MM-DD HH:MM] text".
// If any URL is unknown nothing is changed.
// Emits one BulkNotesAppendedEvent after a successful save.
func (r *Repository) BulkAppendNotes(urls []string, text string) error {
	note := fmt.Sprintf("\n[%s] %s", time.Now().Format(noteTimestampLayout), text)

	r.mu.Lock()
	indices := make([]int, 0, len(urls))
	for _, url := range urls {
		i, ok := r.index[url]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		indices = append(indices, i)
	}
	for _, i := range indices {
		r.leads[i].Notes += note
	}
	err := r.saveLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.emit(BulkNotesAppendedEvent{URLs: urls, Note: note})
	return nil
}

// ReplaceAll swaps in a reconciled table wholesale and persists it.
// Emits a TableReplacedEvent after a successful save.
func (r *Repository) ReplaceAll(leads []Lead) error {
	r.mu.Lock()
	r.reset(leads)
	err := r.saveLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.emit(TableReplacedEvent{Count: len(leads)})
	return nil
}
