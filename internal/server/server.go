// Package server provides the HTTP front end over the analysis service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danielolaszy/triage/internal/analysis"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// Service is the subset of the orchestrator the HTTP layer depends on.
type Service interface {
	RunAnalysis(ctx context.Context, req analysis.AnalyzeRequest) (*models.AnalyzeReport, error)
	RunUpdate(ctx context.Context, req analysis.UpdateRequest) (*models.UpdateReport, error)
	UpdateSingle(ctx context.Context, issueID string, fields map[string]any, dryRun bool) (*models.UpdateReport, error)
}

// Server exposes the analysis and update operations over HTTP.
type Server struct {
	service       Service
	defaultStatus string
	mcp           http.Handler
}

// New creates the HTTP front end. defaultStatus is applied when a request
// carries no status filter of its own.
func New(service Service, defaultStatus string) *Server {
	return &Server{service: service, defaultStatus: defaultStatus}
}

// MountMCP attaches a streamable MCP handler under /mcp.
func (s *Server) MountMCP(handler http.Handler) {
	s.mcp = handler
}

// Routes returns the chi router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/analyze_tickets", s.handleAnalyzeTickets)
	r.Post("/update_fields", s.handleUpdateFields)

	if s.mcp != nil {
		r.Mount("/mcp", s.mcp)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeTicketsRequest struct {
	ProjectKey   string `json:"project_key"`
	StatusFilter string `json:"status_filter"`

	// Limit accepts a JSON number or the string "unlimited"
	Limit json.RawMessage `json:"limit"`
}

func (s *Server) handleAnalyzeTickets(w http.ResponseWriter, r *http.Request) {
	var req analyzeTicketsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ProjectKey == "" {
		respondError(w, http.StatusBadRequest, "project_key is required")
		return
	}

	limit, err := parseLimit(req.Limit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := req.StatusFilter
	if status == "" {
		status = s.defaultStatus
	}

	report, err := s.service.RunAnalysis(r.Context(), analysis.AnalyzeRequest{
		ProjectKey: req.ProjectKey,
		Status:     status,
		Limit:      limit,
	})
	if err != nil {
		logging.Error("analyze request failed", "project", req.ProjectKey, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

type updateFieldsRequest struct {
	IssueID string              `json:"issue_id"`
	Fields  map[string]any      `json:"fields"`
	Batch   bool                `json:"batch"`
	DryRun  bool                `json:"dry_run"`
	Issues  []models.UpdateItem `json:"issues"`
}

func (s *Server) handleUpdateFields(w http.ResponseWriter, r *http.Request) {
	var req updateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Batch {
		if req.Issues == nil {
			respondError(w, http.StatusBadRequest, "issues array is required when batch=true")
			return
		}

		report, err := s.service.RunUpdate(r.Context(), analysis.UpdateRequest{
			Items:  req.Issues,
			DryRun: req.DryRun,
		})
		if err != nil {
			logging.Error("batch update request failed", "items", len(req.Issues), "error", err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.service.UpdateSingle(r.Context(), req.IssueID, req.Fields, req.DryRun)
	if err != nil {
		// UpdateSingle only fails on precondition violations; remote
		// failures land in the per-issue result.
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// parseLimit accepts a JSON number, a numeric string, the string
// "unlimited", or nothing at all. "unlimited" and absence both mean no cap.
func parseLimit(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" || asString == "unlimited" {
			return nil, nil
		}
		n, err := strconv.Atoi(asString)
		if err != nil {
			return nil, fmt.Errorf("limit must be a number or \"unlimited\"")
		}
		if n < 0 {
			n = 0
		}
		return &n, nil
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return nil, fmt.Errorf("limit must be a number or \"unlimited\"")
	}
	n := int(asNumber)
	if n < 0 {
		n = 0
	}
	return &n, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
