package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/orchestrator"
	"github.com/dusk-indust/transcreate/internal/plan"
	"github.com/dusk-indust/transcreate/internal/scene"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	SceneGraph    scene.Graph `json:"scene_graph"`
	TargetCulture string      `json:"target_culture"`
	AvoidList     []string    `json:"avoid_list"`
}

// ValidateResponse is the body of POST /v1/validate/{kind}.
type ValidateResponse struct {
	Valid      bool              `json:"valid"`
	Kind       plan.Kind         `json:"kind"`
	Plan       any               `json:"plan,omitempty"`
	Violations []plan.FieldError `json:"violations,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status string      `json:"status"`
	Graph  graph.Stats `json:"graph"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := plan.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Graph: s.store.Stats()})
}

func (s *Server) handleFindNode(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	if label == "" {
		writeError(w, http.StatusBadRequest, "query parameter label is required")
		return
	}
	node, ok := graph.Lookup(s.store, label)
	if !ok {
		writeError(w, http.StatusNotFound, "no node labeled "+strconv.Quote(label))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodeType, culture := q.Get("type"), q.Get("culture")
	if nodeType == "" || culture == "" {
		writeError(w, http.StatusBadRequest, "query parameters type and culture are required")
		return
	}
	writeJSON(w, http.StatusOK, s.store.NodesByTypeAndCulture(nodeType, culture))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.TargetCulture == "" {
		writeError(w, http.StatusBadRequest, "target_culture is required")
		return
	}

	p, err := s.engine.Analyze(r.Context(), orchestrator.Input{
		Scene:         req.SceneGraph,
		TargetCulture: req.TargetCulture,
		AvoidList:     req.AvoidList,
	})
	if err != nil {
		// Only cancellation fails an analysis; the client is gone.
		s.logger.Warn("analysis aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	if s.archive != nil {
		run, err := s.archive.Save(r.Context(), "api", p)
		if err != nil {
			s.logger.Error("archive plan", zap.Error(err))
		} else {
			w.Header().Set(RunIDHeader, run.ID)
		}
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, "plan archive is not configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	runs, err := s.archive.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotImplemented, "plan archive is not configured")
		return
	}
	run, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	kind, err := plan.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	schema, err := plan.Schema(kind)
	if err != nil {
		s.logger.Error("build schema", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "schema generation failed")
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	kind, err := plan.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	v, err := plan.Validate(kind, raw)
	var se *plan.SchemaError
	switch {
	case errors.As(err, &se):
		writeJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
			Kind:       kind,
			Violations: se.Violations,
			Error:      se.Error(),
		})
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Kind: kind, Plan: v})
	}
}
