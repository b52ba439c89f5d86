package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Source lists the endpoints exposed by the HTTP handlers.
type Source interface {
	Endpoints() []*Endpoint
}

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes.
// It reports the rollup of the last committed endpoint statuses; it never
// triggers a check itself.
func ReadinessHandler(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := Summarize(src.Endpoints())

		w.Header().Set("Content-Type", "text/plain")

		switch {
		case summary.Ready():
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case summary.Degraded():
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// StatusResponse is the JSON response for the detailed status endpoint.
type StatusResponse struct {
	Status    Status             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Counts    map[string]int     `json:"counts"`
	Endpoints []EndpointResponse `json:"endpoints"`
}

// EndpointResponse is the JSON view of a single endpoint.
type EndpointResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Group        string          `json:"group"`
	MonitorType  string          `json:"monitorType"`
	Address      string          `json:"address"`
	Health       *EndpointHealth `json:"health,omitempty"`
	LastModified string          `json:"lastModifiedTime"`
}

// NewEndpointResponse builds the JSON view of ep.
func NewEndpointResponse(ep *Endpoint) EndpointResponse {
	return EndpointResponse{
		ID:           ep.ID().String(),
		Name:         ep.Name(),
		Group:        ep.Group(),
		MonitorType:  ep.MonitorType(),
		Address:      ep.Address(),
		Health:       ep.Health(),
		LastModified: ep.LastModifiedTime().Format(time.RFC3339Nano),
	}
}

// DetailedHandler returns an HTTP handler that reports every endpoint with
// its last committed health.
func DetailedHandler(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoints := src.Endpoints()
		summary := Summarize(endpoints)

		response := StatusResponse{
			Status:    summary.Worst,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Counts:    make(map[string]int, len(summary.Counts)),
			Endpoints: make([]EndpointResponse, 0, len(endpoints)),
		}
		for status, n := range summary.Counts {
			response.Counts[status.String()] = n
		}
		for _, ep := range endpoints {
			response.Endpoints = append(response.Endpoints, NewEndpointResponse(ep))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
