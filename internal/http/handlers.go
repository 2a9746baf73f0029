package http

import (
	"errors"
	"net/http"
	"strings"

	"finpulse/internal/log"
	"finpulse/internal/services"
)

// maxImportBytes caps an uploaded CSV batch at 16 MiB.
const maxImportBytes = 16 << 20

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	series, err := s.analytics.Overview(r.Context())
	if err != nil {
		s.serverError(w, r, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, buildOverview(series))
}

func (s *Server) handleHealthReport(w http.ResponseWriter, r *http.Request) {
	preset := r.URL.Query().Get("preset")
	report, ok, err := s.analytics.Health(r.Context(), preset)
	if err != nil {
		s.serverError(w, r, "health", err)
		return
	}
	writeJSON(w, http.StatusOK, buildHealth(report, ok))
}

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.Recurring(r.Context())
	if err != nil {
		s.serverError(w, r, "recurring", err)
		return
	}
	writeJSON(w, http.StatusOK, buildRecurring(report))
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	result, ok, err := s.analytics.Forecast(r.Context())
	if err != nil {
		s.serverError(w, r, "forecast", err)
		return
	}
	writeJSON(w, http.StatusOK, buildForecast(result, ok))
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.analytics.Correlation(r.Context())
	if err != nil {
		s.serverError(w, r, "correlation", err)
		return
	}
	writeJSON(w, http.StatusOK, buildCorrelation(matrix))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.analytics.Dashboard(r.Context())
	if err != nil {
		s.serverError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Overview:    buildOverview(data.Overview),
		Health:      buildHealth(data.Health, data.HealthOK),
		Recurring:   buildRecurring(data.Recurring),
		Forecast:    buildForecast(data.Forecast, data.ForecastOK),
		Correlation: buildCorrelation(data.Correlation),
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	result, err := s.importer.ImportCSV(r.Context(), body)
	if err != nil {
		if errors.Is(err, services.ErrBadBatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.serverError(w, r, "import", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListInvestmentAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.importer.ListInvestmentAccounts(r.Context())
	if err != nil {
		s.serverError(w, r, "list accounts", err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	writeJSON(w, http.StatusOK, accountsResponse{Accounts: accounts})
}

func (s *Server) handleTagInvestmentAccount(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "account name is required")
		return
	}
	if err := s.importer.TagInvestmentAccount(r.Context(), name); err != nil {
		s.serverError(w, r, "tag account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUntagInvestmentAccount(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "account name is required")
		return
	}
	if err := s.importer.UntagInvestmentAccount(r.Context(), name); err != nil {
		s.serverError(w, r, "untag account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.ErrorContext(r.Context(), "Request failed",
		"op", op,
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
