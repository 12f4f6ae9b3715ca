package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
)

const importCSV = "summary,lowHangingFruit,originalPost,solution,date,url,subreddit\n" +
	"Needs CRM,Offer demo,Post one,Fix one,2025-03-07T14:30:00.000-04:00,https://reddit.com/r/sales/comments/a1,sales\n" +
	"Burned out,Offer automation,Post two,Fix two,2025-03-08T09:00:00.000-04:00,https://reddit.com/r/startups/comments/b2,startups\n"

func decodeLeadViews(t *testing.T, w *httptest.ResponseRecorder) []leadView {
	t.Helper()
	var views []leadView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return views
}

// TestHandleListLeads tests the lead listing and filtering handler.
func TestHandleListLeads(t *testing.T) {
	server := newTestServer(t)
	seedTestServer(t, server)

	t.Run("returns every lead unfiltered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		w := httptest.NewRecorder()

		server.handleListLeads(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("expected JSON Content-Type, got %q", ct)
		}

		views := decodeLeadViews(t, w)
		if len(views) != 3 {
			t.Errorf("expected 3 leads, got %d", len(views))
		}
	})

	t.Run("renders display dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		w := httptest.NewRecorder()

		server.handleListLeads(w, req)

		views := decodeLeadViews(t, w)
		if views[0].DateDisplay != "March 07, 2025" {
			t.Errorf("expected display date 'March 07, 2025', got %q", views[0].DateDisplay)
		}
		if views[0].Date != "2025-03-07T14:30:00.000-04:00" {
			t.Errorf("expected raw date kept, got %q", views[0].Date)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads?status=New&status=Contacted", nil)
		w := httptest.NewRecorder()

		server.handleListLeads(w, req)

		views := decodeLeadViews(t, w)
		if len(views) != 2 {
			t.Fatalf("expected 2 leads, got %d", len(views))
		}
		for _, v := range views {
			if v.Status != "New" && v.Status != "Contacted" {
				t.Errorf("unexpected status %q", v.Status)
			}
		}
	})

	t.Run("filters by subreddit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads?subreddit=startups", nil)
		w := httptest.NewRecorder()

		server.handleListLeads(w, req)

		views := decodeLeadViews(t, w)
		if len(views) != 1 {
			t.Fatalf("expected 1 lead, got %d", len(views))
		}
		if views[0].Subreddit != "startups" {
			t.Errorf("expected subreddit 'startups', got %q", views[0].Subreddit)
		}
	})

	t.Run("combines both filters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads?status=New&subreddit=startups", nil)
		w := httptest.NewRecorder()

		server.handleListLeads(w, req)

		views := decodeLeadViews(t, w)
		if len(views) != 0 {
			t.Errorf("expected no leads, got %d", len(views))
		}
	})
}

// TestHandleListSubreddits tests the distinct subreddit handler.
func TestHandleListSubreddits(t *testing.T) {
	server := newTestServer(t)
	seedTestServer(t, server)

	req := httptest.NewRequest(http.MethodGet, "/api/leads/subreddits", nil)
	w := httptest.NewRecorder()

	server.handleListSubreddits(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var subreddits []string
	if err := json.Unmarshal(w.Body.Bytes(), &subreddits); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	expected := []string{"sales", "smallbusiness", "startups"}
	if !reflect.DeepEqual(subreddits, expected) {
		t.Errorf("expected %v, got %v", expected, subreddits)
	}
}

// TestHandleSetStatus tests the single lead status handler.
func TestHandleSetStatus(t *testing.T) {
	server := newTestServer(t)
	seedTestServer(t, server)

	t.Run("updates and returns the lead", func(t *testing.T) {
		body := `{"url":"https://reddit.com/r/smallbusiness/comments/abc123","status":"In Progress"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/status", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleSetStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var view leadView
		if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if view.Status != "In Progress" {
			t.Errorf("expected status 'In Progress', got %q", view.Status)
		}

		lead, err := server.repo.Get("https://reddit.com/r/smallbusiness/comments/abc123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if lead.Status != store.StatusInProgress {
			t.Errorf("expected repository updated, got %q", lead.Status)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/leads/status", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		server.handleSetStatus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		body := `{"url":"https://reddit.com/r/smallbusiness/comments/abc123","status":"Ghosted"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/status", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleSetStatus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("returns not found for unknown urls", func(t *testing.T) {
		body := `{"url":"https://reddit.com/r/nowhere/comments/zzz","status":"Closed"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/status", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleSetStatus(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}

		var resp errorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Error == "" {
			t.Error("expected error message in response")
		}
	})
}

// TestHandleSetNotes tests the single lead notes handler.
func TestHandleSetNotes(t *testing.T) {
	server := newTestServer(t)
	seedTestServer(t, server)

	t.Run("replaces the notes", func(t *testing.T) {
		body := `{"url":"https://reddit.com/r/startups/comments/def456","notes":"Follow up Monday"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/notes", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleSetNotes(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var view leadView
		if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if view.Notes != "Follow up Monday" {
			t.Errorf("expected updated notes, got %q", view.Notes)
		}
	})

	t.Run("null notes clear the field", func(t *testing.T) {
		body := `{"url":"https://reddit.com/r/startups/comments/def456","notes":null}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/notes", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleSetNotes(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		lead, err := server.repo.Get("https://reddit.com/r/startups/comments/def456")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if lead.Notes != "" {
			t.Errorf("expected cleared notes, got %q", lead.Notes)
		}
	})

	t.Run("returns not found for unknown urls", func(t *testing.T) {
		body := `{"url":"https://reddit.com/r/nowhere/comments/zzz","notes":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/notes", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleSetNotes(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

// TestHandleBulkStatus tests the bulk status handler.
func TestHandleBulkStatus(t *testing.T) {
	t.Run("updates every listed lead", func(t *testing.T) {
		server := newTestServer(t)
		seedTestServer(t, server)

		body := `{"urls":["https://reddit.com/r/smallbusiness/comments/abc123","https://reddit.com/r/startups/comments/def456"],"status":"Closed"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/bulk/status", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleBulkStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp bulkResultView
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Updated != 2 {
			t.Errorf("expected 2 updated, got %d", resp.Updated)
		}

		for _, url := range []string{
			"https://reddit.com/r/smallbusiness/comments/abc123",
			"https://reddit.com/r/startups/comments/def456",
		} {
			lead, err := server.repo.Get(url)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if lead.Status != store.StatusClosed {
				t.Errorf("expected %s closed, got %q", url, lead.Status)
			}
		}
	})

	t.Run("rejects empty url lists", func(t *testing.T) {
		server := newTestServer(t)
		seedTestServer(t, server)

		req := httptest.NewRequest(http.MethodPost, "/api/leads/bulk/status", strings.NewReader(`{"urls":[],"status":"Closed"}`))
		w := httptest.NewRecorder()

		server.handleBulkStatus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("leaves the batch untouched on unknown urls", func(t *testing.T) {
		server := newTestServer(t)
		seedTestServer(t, server)

		body := `{"urls":["https://reddit.com/r/smallbusiness/comments/abc123","https://reddit.com/r/nowhere/comments/zzz"],"status":"Closed"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/bulk/status", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleBulkStatus(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}

		lead, err := server.repo.Get("https://reddit.com/r/smallbusiness/comments/abc123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if lead.Status != store.StatusNew {
			t.Errorf("expected status unchanged, got %q", lead.Status)
		}
	})
}

// TestHandleBulkNotes tests the bulk note handler.
func TestHandleBulkNotes(t *testing.T) {
	t.Run("appends a timestamped note to every lead", func(t *testing.T) {
		server := newTestServer(t)
		seedTestServer(t, server)

		body := `{"urls":["https://reddit.com/r/smallbusiness/comments/abc123","https://reddit.com/r/startups/comments/def456"],"text":"sent deck"}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/bulk/notes", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleBulkNotes(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp bulkResultView
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Updated != 2 {
			t.Errorf("expected 2 updated, got %d", resp.Updated)
		}

		lead, err := server.repo.Get("https://reddit.com/r/startups/comments/def456")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasSuffix(lead.Notes, "] sent deck") {
			t.Errorf("expected appended note, got %q", lead.Notes)
		}
		if !strings.HasPrefix(lead.Notes, "Asked about pricing\n[") {
			t.Errorf("expected existing notes kept, got %q", lead.Notes)
		}
	})

	t.Run("rejects empty url lists", func(t *testing.T) {
		server := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/leads/bulk/notes", strings.NewReader(`{"urls":[],"text":"hi"}`))
		w := httptest.NewRecorder()

		server.handleBulkNotes(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("rejects empty note text", func(t *testing.T) {
		server := newTestServer(t)
		seedTestServer(t, server)

		body := `{"urls":["https://reddit.com/r/smallbusiness/comments/abc123"],"text":"   "}`
		req := httptest.NewRequest(http.MethodPost, "/api/leads/bulk/notes", strings.NewReader(body))
		w := httptest.NewRecorder()

		server.handleBulkNotes(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

// TestHandleSync tests the CSV import handler.
func TestHandleSync(t *testing.T) {
	t.Run("imports from the request body", func(t *testing.T) {
		server := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(importCSV))
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp syncResultView
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 2 || resp.Preserved != 0 || resp.Added != 2 {
			t.Errorf("unexpected result %+v", resp)
		}
		if server.repo.Len() != 2 {
			t.Errorf("expected 2 leads, got %d", server.repo.Len())
		}
	})

	t.Run("falls back to the import file", func(t *testing.T) {
		server := newTestServer(t)
		if err := os.WriteFile(server.importFile, []byte(importCSV), 0o644); err != nil {
			t.Fatalf("failed to write import file: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		if server.repo.Len() != 2 {
			t.Errorf("expected 2 leads, got %d", server.repo.Len())
		}
	})

	t.Run("fails when the import file is missing", func(t *testing.T) {
		server := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})

	t.Run("reports missing columns", func(t *testing.T) {
		server := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader("summary,url\nrow,https://x\n"))
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var resp missingFieldsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		expected := []string{"lowHangingFruit", "originalPost", "solution", "date", "subreddit"}
		if !reflect.DeepEqual(resp.MissingFields, expected) {
			t.Errorf("expected missing fields %v, got %v", expected, resp.MissingFields)
		}
	})

	t.Run("rejects bad import rows", func(t *testing.T) {
		server := newTestServer(t)
		seedTestServer(t, server)

		badStatus := "summary,lowHangingFruit,originalPost,solution,date,url,subreddit,status\n" +
			"Row,f,p,s,2025-03-07T14:30:00.000-04:00,https://reddit.com/r/sales/comments/zz,sales,Ghosted\n"
		req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(badStatus))
		w := httptest.NewRecorder()

		server.handleSync(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		if server.repo.Len() != 3 {
			t.Errorf("expected repository untouched, got %d leads", server.repo.Len())
		}
	})
}

// TestHandleAnalytics tests the analytics snapshot handler.
func TestHandleAnalytics(t *testing.T) {
	server := newTestServer(t)
	seedTestServer(t, server)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	w := httptest.NewRecorder()

	server.handleAnalytics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(snap.StatusDistribution.Labels) != 4 {
		t.Errorf("expected 4 status labels, got %v", snap.StatusDistribution.Labels)
	}
	if len(snap.FunnelData) != 4 {
		t.Errorf("expected 4 funnel stages, got %d", len(snap.FunnelData))
	}
}

// TestHandleExports tests the three download endpoints.
func TestHandleExports(t *testing.T) {
	server := newTestServer(t)
	seedTestServer(t, server)

	t.Run("summary report", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/export/summary.csv", nil)
		w := httptest.NewRecorder()

		server.handleExportSummary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
			t.Errorf("expected CSV Content-Type, got %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="lead_status_report.csv"` {
			t.Errorf("unexpected Content-Disposition %q", cd)
		}
		body := w.Body.String()
		if !strings.HasPrefix(body, "Metric,Value\n") {
			t.Errorf("expected Metric/Value header, got %q", body)
		}
		if !strings.Contains(body, "Total Leads,3") {
			t.Errorf("expected total leads row, got %q", body)
		}
	})

	t.Run("detailed leads", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/export/leads.csv", nil)
		w := httptest.NewRecorder()

		server.handleExportLeads(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="detailed_leads.csv"` {
			t.Errorf("unexpected Content-Disposition %q", cd)
		}
		body := w.Body.String()
		if !strings.HasPrefix(body, "summary,lowHangingFruit,originalPost,solution,date,url,subreddit,status,notes\n") {
			t.Errorf("expected lead table header, got %q", body)
		}
		if !strings.Contains(body, "https://reddit.com/r/sales/comments/ghi789") {
			t.Error("expected lead url in export")
		}
	})

	t.Run("analytics json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/export/analytics.json", nil)
		w := httptest.NewRecorder()

		server.handleExportAnalytics(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="analytics_summary.json"` {
			t.Errorf("unexpected Content-Disposition %q", cd)
		}

		var snap map[string]json.RawMessage
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			t.Fatalf("failed to decode export: %v", err)
		}
		if _, ok := snap["funnel_data"]; !ok {
			t.Error("expected funnel_data in export")
		}
	})
}
