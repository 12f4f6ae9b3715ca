package core

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/seckatie/leadtrackd/internal/core/store"
)

// ErrMissingFields matches any MissingFieldError via errors.Is.
var ErrMissingFields = errors.New("missing required columns")

// requiredImportColumns must all be present in an import header. status and
// notes are optional; absent ones default to New and empty.
var requiredImportColumns = []string{"summary", "lowHangingFruit", "originalPost", "solution", "date", "url", "subreddit"}

// MissingFieldError reports required columns absent from an import header.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingFields
}

// ParseImport decodes a scraper CSV export into leads ready for
// reconciliation.
//
// It validates the header against the required column set and returns a
// MissingFieldError naming every absent column. Text fields are normalized
// with CleanText, a blank status defaults to New, and an unrecognized status
// is rejected rather than carried into the table. Rows must have a URL; when
// two rows share one, the first occurrence wins.
func ParseImport(r io.Reader) ([]store.Lead, error) {
	leads, header, err := store.DecodeLeads(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse import: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	var missing []string
	for _, name := range requiredImportColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	out := make([]store.Lead, 0, len(leads))
	seen := make(map[string]bool, len(leads))
	for i, l := range leads {
		row := i + 1
		if l.URL == "" {
			return nil, fmt.Errorf("import row %d has no url", row)
		}
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true

		l.Summary = CleanText(l.Summary)
		l.LowHangingFruit = CleanText(l.LowHangingFruit)
		l.OriginalPost = CleanText(l.OriginalPost)
		l.Solution = CleanText(l.Solution)

		status := store.Status(strings.TrimSpace(string(l.Status)))
		if status == "" {
			status = store.StatusNew
		} else if !store.ValidStatus(status) {
			return nil, fmt.Errorf("%w: %q in import row %d", store.ErrInvalidStatus, l.Status, row)
		}
		l.Status = status

		out = append(out, l)
	}
	return out, nil
}

// Reconcile merges a fresh import with the tracked table. The import decides
// which leads exist and what their content fields say; leads already tracked
// keep their status and notes. Tracked leads missing from the import are
// dropped.
func Reconcile(existing, imported []store.Lead) []store.Lead {
	if len(existing) == 0 {
		return imported
	}

	type triage struct {
		status store.Status
		notes  string
	}
	prior := make(map[string]triage, len(existing))
	for _, l := range existing {
		prior[l.URL] = triage{status: l.Status, notes: l.Notes}
	}

	merged := make([]store.Lead, len(imported))
	copy(merged, imported)
	for i := range merged {
		if t, ok := prior[merged[i].URL]; ok {
			merged[i].Status = t.status
			merged[i].Notes = t.notes
		}
	}
	return merged
}

// SyncResult reports the outcome of an import reconciliation.
type SyncResult struct {
	// Total is the number of leads in the reconciled table.
	Total int
	// Preserved is how many of them carried triage state forward.
	Preserved int
	// Added is how many are new to the table.
	Added int
}

// Sync is the top-level import workflow: parse the CSV, reconcile it with the
// tracked table, and replace the table with the result.
//
// On a persistence failure the in-memory table has already been replaced; the
// result is returned alongside the error.
func Sync(repo *store.Repository, r io.Reader) (SyncResult, error) {
	imported, err := ParseImport(r)
	if err != nil {
		return SyncResult{}, err
	}

	existing := repo.Leads()
	known := make(map[string]bool, len(existing))
	for _, l := range existing {
		known[l.URL] = true
	}

	merged := Reconcile(existing, imported)

	res := SyncResult{Total: len(merged)}
	for _, l := range merged {
		if known[l.URL] {
			res.Preserved++
		}
	}
	res.Added = res.Total - res.Preserved

	if err := repo.ReplaceAll(merged); err != nil {
		return res, err
	}

	log.Printf("Sync complete: %d lead(s), %d preserved, %d new", res.Total, res.Preserved, res.Added)
	return res, nil
}
