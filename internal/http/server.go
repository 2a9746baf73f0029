// Package http exposes the analytics engine as a JSON API.
package http

import (
	"net/http"
	"time"

	"finpulse/internal/log"
	"finpulse/internal/services"
)

// requestTimeout bounds every handler; the dashboard recomputes five sections
// on a cold cache and still fits comfortably.
const requestTimeout = 15 * time.Second

type Server struct {
	http.Server
	analytics *services.AnalyticsService
	importer  *services.ImportService
	logger    *log.Logger
}

// NewServer configures the API routes and returns a ready-to-run server.
func NewServer(addr string, analytics *services.AnalyticsService, importer *services.ImportService, logger *log.Logger) *Server {
	s := &Server{
		analytics: analytics,
		importer:  importer,
		logger:    logger.WithComponent(log.ComponentServer),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/health", s.handleHealthReport)
	mux.HandleFunc("GET /api/recurring", s.handleRecurring)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/correlation", s.handleCorrelation)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/transactions/import", s.handleImport)
	mux.HandleFunc("GET /api/accounts/investment", s.handleListInvestmentAccounts)
	mux.HandleFunc("PUT /api/accounts/investment/{name}", s.handleTagInvestmentAccount)
	mux.HandleFunc("DELETE /api/accounts/investment/{name}", s.handleUntagInvestmentAccount)
	mux.HandleFunc("GET /healthz", handleLiveness)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.Middleware(s.logger)(http.TimeoutHandler(mux, requestTimeout, "request timed out")),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
