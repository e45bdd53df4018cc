// Package server exposes the analysis engine over HTTP: prompt analysis,
// health and configuration introspection.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aegntic/prompt-prompter-dd/config"
	"github.com/aegntic/prompt-prompter-dd/engine"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// AnalysisService is the engine surface the HTTP layer depends on.
type AnalysisService interface {
	Analyze(ctx context.Context, req engine.AnalysisRequest) (*engine.AnalysisReport, error)
	Config() *config.Config
	Healthy() bool
}

// Server routes HTTP requests to an AnalysisService.
type Server struct {
	service AnalysisService
	sink    telemetry.Sink
	logger  utils.Logger
	tags    []string
	router  *mux.Router
}

// New builds the server and its routes.
func New(service AnalysisService, sink telemetry.Sink, logger utils.Logger) *Server {
	cfg := service.Config()
	s := &Server{
		service: service,
		sink:    sink,
		logger:  logger,
		tags:    telemetry.BaseTags(cfg.DDService, cfg.DDEnv),
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/config", s.handleConfig).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// analyzeRequest is the analyze endpoint's JSON body. AutoOptimize is a
// pointer so an absent field defaults to true.
type analyzeRequest struct {
	Prompt           string `json:"prompt"`
	ExpectedResponse string `json:"expected_response,omitempty"`
	AutoOptimize     *bool  `json:"auto_optimize,omitempty"`
}

// analyzeResponse wraps the engine report with the prompt it was produced
// for and a terminal status.
type analyzeResponse struct {
	Prompt string `json:"prompt"`
	*engine.AnalysisReport
	Status string `json:"status"`
}

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_input", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	req := engine.AnalysisRequest{
		Prompt:           body.Prompt,
		ExpectedResponse: body.ExpectedResponse,
		AutoOptimize:     true,
	}
	if body.AutoOptimize != nil {
		req.AutoOptimize = *body.AutoOptimize
	}

	report, err := s.service.Analyze(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Prompt:         body.Prompt,
		AnalysisReport: report,
		Status:         "completed",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.service.Healthy() {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConfig reports operational settings. Credentials are never included.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"model":                cfg.GeminiModel,
		"optimizer_model":      cfg.OptimizerModel,
		"embedding_model":      cfg.EmbeddingModel,
		"temperature":          cfg.Temperature,
		"max_output_tokens":    cfg.MaxOutputTokens,
		"accuracy_threshold":   cfg.AccuracyThreshold,
		"token_threshold":      cfg.TokenThreshold,
		"latency_threshold_ms": cfg.LatencyThresholdMS,
	})
}

// writeEngineError maps engine error types onto HTTP statuses: invalid input
// is the caller's fault, provider failures are a bad gateway, everything else
// is internal.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	errType := engine.TypeOf(err)
	status := http.StatusInternalServerError
	switch errType {
	case engine.ErrorTypeInvalidInput:
		status = http.StatusBadRequest
	case engine.ErrorTypeUpstream, engine.ErrorTypeRateLimit, engine.ErrorTypeTransient, engine.ErrorTypeEmbedding:
		status = http.StatusBadGateway
	}

	typeName := errType.String()
	s.logger.Error("analysis request failed", "type", typeName, "error", err)
	s.sink.Incr("prompt.errors", telemetry.With(s.tags, "type:"+typeName))
	s.writeError(w, status, typeName, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, typeName, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message, Type: typeName})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
