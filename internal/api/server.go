package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/intelsheet/internal/config"
	"github.com/dgallion1/intelsheet/internal/intel"
	"github.com/dgallion1/intelsheet/internal/llm"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API for company intel and its exports.
type Server struct {
	router chi.Router
	intel  *intel.Service
	stats  *llm.Stats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(svc *intel.Service, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		intel: svc,
		stats: stats,
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/ping", s.handlePing)
	r.Get("/health", s.handlePing)
	r.Get("/files/{name}", s.handleFile)
	r.Get("/stats/llm", s.handleLLMStats)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/fetch-intel", s.handleFetchIntel)
		r.Post("/export-excel", s.handleExportExcel)
		r.Post("/export-csv", s.handleExportCSV)
		r.Post("/compare", s.handleCompare)
		r.Post("/compare-url", s.handleCompareURL)
	})

	s.router = r
}
