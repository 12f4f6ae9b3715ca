package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
)

// handleListLeads returns the lead table, optionally filtered by repeated
// status and subreddit query parameters.
func (ws *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leads := ws.repo.Filter(q["status"], q["subreddit"])
	writeJSON(w, http.StatusOK, newLeadViews(leads))
}

// handleListSubreddits returns the distinct subreddits in the table.
func (ws *Server) handleListSubreddits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ws.repo.Subreddits())
}

type statusRequest struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// handleSetStatus moves a single lead to a new pipeline status.
func (ws *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ws.repo.SetStatus(req.URL, store.Status(req.Status)); err != nil {
		ws.writeLeadError(w, err)
		return
	}
	ws.writeUpdatedLead(w, req.URL)
}

type notesRequest struct {
	URL   string  `json:"url"`
	Notes *string `json:"notes"`
}

// handleSetNotes replaces the notes on a single lead. A null notes field
// clears them.
func (ws *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := ws.repo.SetNotes(req.URL, notes); err != nil {
		ws.writeLeadError(w, err)
		return
	}
	ws.writeUpdatedLead(w, req.URL)
}

type bulkStatusRequest struct {
	URLs   []string `json:"urls"`
	Status string   `json:"status"`
}

// handleBulkStatus moves a batch of leads to a new status in one step.
func (ws *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "no urls given")
		return
	}

	if err := ws.repo.BulkSetStatus(req.URLs, store.Status(req.Status)); err != nil {
		ws.writeLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResultView{Updated: len(req.URLs)})
}

type bulkNotesRequest struct {
	URLs []string `json:"urls"`
	Text string   `json:"text"`
}

// handleBulkNotes appends one timestamped note to a batch of leads.
func (ws *Server) handleBulkNotes(w http.ResponseWriter, r *http.Request) {
	var req bulkNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "no urls given")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "no note text given")
		return
	}

	if err := ws.repo.BulkAppendNotes(req.URLs, req.Text); err != nil {
		ws.writeLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResultView{Updated: len(req.URLs)})
}

// handleSync merges a CSV import into the lead table. The import is read
// from the request body, or from the configured import file when the body
// is empty.
func (ws *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var src io.Reader = bytes.NewReader(body)
	if len(bytes.TrimSpace(body)) == 0 {
		f, err := os.Open(ws.importFile)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to open import file")
			log.Printf("Failed to open import file %s: %v", ws.importFile, err)
			return
		}
		defer f.Close()
		src = f
	}

	res, err := core.Sync(ws.repo, src)
	if err != nil {
		ws.writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResultView{
		Total:     res.Total,
		Preserved: res.Preserved,
		Added:     res.Added,
	})
}

// writeUpdatedLead returns the post-mutation view of a lead.
func (ws *Server) writeUpdatedLead(w http.ResponseWriter, url string) {
	lead, err := ws.repo.Get(url)
	if err != nil {
		ws.writeLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLeadView(lead))
}

// writeLeadError maps repository errors onto HTTP statuses.
func (ws *Server) writeLeadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
		log.Printf("Failed to update lead: %v", err)
	}
}

// writeSyncError maps import errors onto HTTP statuses. Missing columns get
// a structured 422 so callers can show which ones to fix.
func (ws *Server) writeSyncError(w http.ResponseWriter, err error) {
	var missing *core.MissingFieldError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, missingFieldsResponse{
			Error:         err.Error(),
			MissingFields: missing.Fields,
		})
	case errors.Is(err, store.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "failed to persist leads")
		log.Printf("Sync failed: %v", err)
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
