package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/msusur/healthmonitoring/auth"
	"github.com/msusur/healthmonitoring/cache"
	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/monitor"
	"github.com/msusur/healthmonitoring/observe"
)

type updateRequest struct {
	Group *string `json:"group"`
	Name  *string `json:"name"`
}

// StatsResponse is the JSON body of GET /endpoints/{id}/stats.
type StatsResponse struct {
	ID      string                   `json:"id"`
	History []*health.EndpointHealth `json:"history"`
}

func endpointID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid endpoint id", ErrBadRequest)
	}
	return id, nil
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*health.Endpoint, bool) {
	id, err := endpointID(r)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return nil, false
	}
	ep, err := s.registry.Get(id)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return nil, false
	}
	return ep, true
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints := s.registry.Endpoints()
	out := make([]health.EndpointResponse, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, health.NewEndpointResponse(ep))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, health.NewEndpointResponse(ep))
}

// handleEndpointStats serves recorded history. History outlives endpoint
// removal, so the registry is not consulted.
func (s *Server) handleEndpointStats(w http.ResponseWriter, r *http.Request) {
	id, err := endpointID(r)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(r.Context(), s.logger, w, fmt.Errorf("%w: limit must be a non-negative integer", ErrBadRequest))
			return
		}
	}

	history, err := s.stats.History(r.Context(), id)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	if history == nil {
		history = []*health.EndpointHealth{}
	}
	writeJSON(w, http.StatusOK, StatsResponse{ID: id.String(), History: history})
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), s.logger, w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	group, name := ep.Group(), ep.Name()
	if req.Group != nil {
		group = *req.Group
	}
	if req.Name != nil {
		name = *req.Name
	}

	updated, err := s.registry.Update(ep.ID(), group, name)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	s.invalidate(r.Context())
	writeJSON(w, http.StatusOK, health.NewEndpointResponse(updated))
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id, err := endpointID(r)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if err := s.registry.Remove(id); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	s.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckEndpoint runs one immediate check. Concurrent requests for the
// same endpoint share a single check, which is not cancelled when one of the
// callers goes away but is cancelled when the server shuts down.
func (s *Server) handleCheckEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.lookup(w, r)
	if !ok {
		return
	}

	_, err, _ := s.checks.Do(ep.ID().String(), func() (any, error) {
		return nil, ep.CheckHealth(s.checkCtx, s.sampler)
	})
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if ep.IsDisposed() {
		writeError(r.Context(), s.logger, w, fmt.Errorf("%w: %s", monitor.ErrNotFound, ep.ID()))
		return
	}

	s.logger.Info(r.Context(), "manual check",
		observe.Field{Key: "endpoint.id", Value: ep.ID().String()},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	s.invalidate(r.Context())
	writeJSON(w, http.StatusOK, health.NewEndpointResponse(ep))
}

func (s *Server) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.DeletePrefix(ctx, cache.KeyPrefix)
	}
}
