package web

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
)

type Server struct {
	repo       *store.Repository
	analytics  *core.Analytics
	importFile string
}

// StartServer serves the dashboard API at addr. It blocks until the
// listener fails.
func StartServer(addr string, repo *store.Repository, analytics *core.Analytics, importFile string) {
	ws := newServer(repo, analytics, importFile)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	ws.registerRoutes(r)

	log.Printf("Starting web server at %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Web server failed: %v", err)
	}
}

func newServer(repo *store.Repository, analytics *core.Analytics, importFile string) *Server {
	return &Server{
		repo:       repo,
		analytics:  analytics,
		importFile: importFile,
	}
}

func (ws *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(api chi.Router) {
		api.Get("/leads", ws.handleListLeads)
		api.Get("/leads/subreddits", ws.handleListSubreddits)
		api.Post("/leads/status", ws.handleSetStatus)
		api.Post("/leads/notes", ws.handleSetNotes)
		api.Post("/leads/bulk/status", ws.handleBulkStatus)
		api.Post("/leads/bulk/notes", ws.handleBulkNotes)
		api.Post("/sync", ws.handleSync)
		api.Get("/analytics", ws.handleAnalytics)
		api.Get("/export/summary.csv", ws.handleExportSummary)
		api.Get("/export/leads.csv", ws.handleExportLeads)
		api.Get("/export/analytics.json", ws.handleExportAnalytics)
	})
}
