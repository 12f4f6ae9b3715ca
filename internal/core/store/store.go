package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrPersistence is returned when the backing CSV file cannot be read or
// written. In-memory state is not rolled back when a write fails.
var ErrPersistence = errors.New("persistence error")

const progressFile = "progress.csv"

// columns is the physical column order of the persisted table. Imports may
// omit the trailing status and notes columns.
var columns = []string{"summary", "lowHangingFruit", "originalPost", "solution", "date", "url", "subreddit", "status", "notes"}

// Store persists the lead table as a single CSV file under a data directory.
// The file is the canonical copy of all triage state and stays readable by
// spreadsheet tools between runs.
type Store struct {
	dir  string
	path string
}

func NewStore(dataDir string) *Store {
	return &Store{
		dir:  dataDir,
		path: filepath.Join(dataDir, progressFile),
	}
}

// Path returns the location of the persisted CSV file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted lead table. An absent file is a valid
// "no data yet" state and loads as a nil slice with no error.
func (s *Store) Load() ([]Lead, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrPersistence, s.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close %s: %v", s.path, err)
		}
	}()

	leads, _, err := DecodeLeads(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrPersistence, s.path, err)
	}
	return leads, nil
}

// Save overwrites the persisted lead table wholesale. The CSV is written to a
// temp file first and renamed into place so a crash mid-write never leaves a
// truncated table behind.
func (s *Store) Save(leads []Lead) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create data directory: %v", ErrPersistence, err)
	}

	var buf bytes.Buffer
	if err := WriteLeads(&buf, leads); err != nil {
		return fmt.Errorf("%w: failed to encode leads: %v", ErrPersistence, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: failed to replace %s: %v", ErrPersistence, s.path, err)
	}
	return nil
}

// DecodeLeads parses a lead table from CSV. It returns the decoded leads and
// the header row it saw; unknown columns are ignored and absent columns decode
// as empty fields, so callers can validate the header against their own
// required set. An empty reader decodes as no leads.
func DecodeLeads(r io.Reader) ([]Lead, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	names := make([]string, len(header))
	idx := make(map[string]int, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(name)
		idx[names[i]] = i
	}
	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var leads []Lead
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read record: %w", err)
		}
		leads = append(leads, Lead{
			Summary:         field(record, "summary"),
			LowHangingFruit: field(record, "lowHangingFruit"),
			OriginalPost:    field(record, "originalPost"),
			Solution:        field(record, "solution"),
			PostedDate:      field(record, "date"),
			URL:             field(record, "url"),
			Subreddit:       field(record, "subreddit"),
			Status:          Status(field(record, "status")),
			Notes:           field(record, "notes"),
		})
	}
	return leads, names, nil
}

// WriteLeads encodes the lead table as CSV with the full column set,
// status and notes included.
func WriteLeads(w io.Writer, leads []Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range leads {
		record := []string{
			l.Summary,
			l.LowHangingFruit,
			l.OriginalPost,
			l.Solution,
			l.PostedDate,
			l.URL,
			l.Subreddit,
			string(l.Status),
			l.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
