package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/service"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Metrics.Snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	a, err := s.svc.Analyze(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Registry.Snapshot())
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !decode(w, r, &req) {
		return
	}

	if req.ID != "" {
		d, ok := s.svc.Registry.Deep(req.ID)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("profile %s not found", req.ID))
			return
		}
		writeJSON(w, http.StatusOK, d)
		return
	}
	if req.Profile == nil && req.Overlay == nil {
		writeError(w, http.StatusBadRequest, errors.New("one of id, profile or overlay is required"))
		return
	}
	defer s.svc.Metrics.Time(metrics.OpNormalize)()
	writeJSON(w, http.StatusOK, deep.Normalize(deep.Partial{Profile: req.Profile, Overlay: req.Overlay}))
}

func (s *Server) handleSerendipity(w http.ResponseWriter, r *http.Request) {
	var req SerendipityRequest
	if !decode(w, r, &req) {
		return
	}

	if req.A != "" || req.B != "" {
		if req.A == "" || req.B == "" {
			writeError(w, http.StatusBadRequest, errors.New("both a and b are required to score a pair"))
			return
		}
		a, okA := s.svc.Registry.Deep(req.A)
		b, okB := s.svc.Registry.Deep(req.B)
		if !okA || !okB {
			writeError(w, http.StatusNotFound, errors.New("unknown profile"))
			return
		}
		writeJSON(w, http.StatusOK, []models.MatchResult{s.svc.Match.Pair(a, b)})
		return
	}

	results, err := s.svc.Match.ScoreAll(r.Context(), s.svc.Registry.DeepAll(), service.MatchOptions{
		MinScore: req.MinScore,
		Limit:    req.Limit,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	var req OpportunitiesRequest
	if !decode(w, r, &req) {
		return
	}

	var uc models.UserContext
	if req.Context != nil {
		uc = *req.Context
	} else {
		name := req.ContextName
		if name == "" {
			name = DefaultContextName
		}
		stored, err := s.svc.UserContext(r.Context(), name)
		if err != nil {
			s.serviceError(w, err)
			return
		}
		uc = stored
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.svc.Config.MaxResults
	}
	out, err := s.svc.Match.Opportunities(r.Context(), uc, s.svc.Registry.DeepAll(), maxResults)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCrossConnections(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Match.CrossConnections(r.Context(), s.svc.Registry.Contacts())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if !decode(w, r, &req) {
		return
	}
	job, err := s.svc.StartEnrich(r.Context(), req.Name, req.ProfileIDs)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Jobs.List())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.svc.Jobs.Get(mux.Vars(r)["id"])
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListOverlays(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.OverlayIDs())
}

func (s *Server) handleGetOverlay(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	o, err := s.svc.Overlay(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OverlayResponse{ID: id, Overlay: o})
}

// handlePutOverlay accepts the overlay as JSON or YAML. The source query
// parameter records where it came from (default "manual").
func (s *Server) handlePutOverlay(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	o, err := deep.ParseOverlay(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	source := r.URL.Query().Get("source")
	switch source {
	case "":
		source = models.OverlaySourceManual
	case models.OverlaySourceManual, models.OverlaySourceNote, models.OverlaySourceLLM:
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown overlay source %q", source))
		return
	}

	if err := s.svc.SetOverlay(r.Context(), id, source, o); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OverlayResponse{ID: id, Overlay: o})
}

func (s *Server) handleDeleteOverlay(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteOverlay(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	uc, err := s.svc.UserContext(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uc)
}

func (s *Server) handlePutContext(w http.ResponseWriter, r *http.Request) {
	var uc models.UserContext
	if !decode(w, r, &uc) {
		return
	}
	if err := s.svc.SetUserContext(r.Context(), mux.Vars(r)["name"], uc); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uc)
}

// serviceError maps service sentinels to status codes.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrUnknownProfile):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrNoProfiles):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, service.ErrEnrichmentDisabled):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}
