package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/prismtrade/prismtrade/internal/analysis"
	"github.com/prismtrade/prismtrade/internal/apperrors"
	"github.com/prismtrade/prismtrade/internal/config"
	"github.com/prismtrade/prismtrade/internal/monitoring"
)

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	service *analysis.Service
	health  *monitoring.HealthChecker
	http    *http.Server
	log     zerolog.Logger
}

func New(cfg config.ServerConfig, service *analysis.Service, log zerolog.Logger) *Server {
	s := &Server{
		service: service,
		health:  monitoring.NewHealthChecker(),
		log:     log.With().Str("component", "server").Logger(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/analyze", s.handleAnalyze).Methods(http.MethodPost)
	router.Handle("/healthz", s.health).Methods(http.MethodGet)
	router.Handle("/metrics", monitoring.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type analyzeRequest struct {
	Symbol string `json:"symbol"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
	} else {
		req.Symbol = r.FormValue("symbol")
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol is required"})
		return
	}

	result, err := s.service.Analyze(r.Context(), req.Symbol)
	s.health.RecordAnalysis(req.Symbol, err)
	if err != nil {
		category := apperrors.CategoryOf(err)
		s.log.Error().Str("symbol", req.Symbol).Str("category", string(category)).Err(err).Msg("analysis failed")
		s.writeJSON(w, statusFor(category), errorResponse{Error: err.Error(), Category: string(category)})
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func statusFor(category apperrors.Category) int {
	switch category {
	case apperrors.CategoryDataInsufficient:
		return http.StatusUnprocessableEntity
	case apperrors.CategoryStaleData:
		return http.StatusServiceUnavailable
	case apperrors.CategoryInstrumentNotFound:
		return http.StatusNotFound
	case apperrors.CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
