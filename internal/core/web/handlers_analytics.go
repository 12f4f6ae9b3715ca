package web

import (
	"log"
	"net/http"

	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
)

// handleAnalytics returns the full analytics snapshot.
func (ws *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ws.analytics.Snapshot())
}

// handleExportSummary serves the status report as a CSV download.
func (ws *Server) handleExportSummary(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lead_status_report.csv"`)
	if err := core.WriteSummaryCSV(w, ws.analytics.SummaryReport()); err != nil {
		log.Printf("Failed to write summary report: %v", err)
	}
}

// handleExportLeads serves the full lead table as a CSV download.
func (ws *Server) handleExportLeads(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="detailed_leads.csv"`)
	if err := store.WriteLeads(w, ws.repo.Leads()); err != nil {
		log.Printf("Failed to write leads export: %v", err)
	}
}

// handleExportAnalytics serves the analytics snapshot as a JSON download.
func (ws *Server) handleExportAnalytics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics_summary.json"`)
	if err := core.WriteAnalyticsJSON(w, ws.analytics.Snapshot()); err != nil {
		log.Printf("Failed to write analytics export: %v", err)
	}
}
