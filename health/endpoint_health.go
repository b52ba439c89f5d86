package health

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

// EndpointHealth is an immutable snapshot of one completed health check.
type EndpointHealth struct {
	checkTime    time.Time
	responseTime time.Duration
	status       Status
	details      map[string]string
}

// NewEndpointHealth creates a snapshot. The details map is copied.
func NewEndpointHealth(checkTime time.Time, responseTime time.Duration, status Status, details map[string]string) *EndpointHealth {
	return &EndpointHealth{
		checkTime:    checkTime.UTC(),
		responseTime: responseTime,
		status:       status,
		details:      maps.Clone(details),
	}
}

// CheckTime returns the instant the check started, in UTC.
func (h *EndpointHealth) CheckTime() time.Time {
	return h.checkTime
}

// ResponseTime returns how long the check took to resolve.
func (h *EndpointHealth) ResponseTime() time.Duration {
	return h.responseTime
}

// Status returns the classified status.
func (h *EndpointHealth) Status() Status {
	return h.status
}

// Details returns a copy of the diagnostic details.
func (h *EndpointHealth) Details() map[string]string {
	if h.details == nil {
		return map[string]string{}
	}
	return maps.Clone(h.details)
}

// Detail returns a single detail value.
func (h *EndpointHealth) Detail(key string) (string, bool) {
	v, ok := h.details[key]
	return v, ok
}

// PrettyDetails renders the details as sorted "key: value" lines.
func (h *EndpointHealth) PrettyDetails() string {
	keys := slices.Sorted(maps.Keys(h.details))

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(h.details[k])
	}
	return b.String()
}

type endpointHealthJSON struct {
	CheckTimeUTC time.Time         `json:"checkTimeUtc"`
	ResponseTime string            `json:"responseTime"`
	Status       Status            `json:"status"`
	Details      map[string]string `json:"details,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (h *EndpointHealth) MarshalJSON() ([]byte, error) {
	return json.Marshal(endpointHealthJSON{
		CheckTimeUTC: h.checkTime,
		ResponseTime: h.responseTime.String(),
		Status:       h.status,
		Details:      h.details,
	})
}

// UnmarshalJSON implements json.Unmarshaler. It is used by stats backends
// reading snapshots back; the value stays immutable once decoded.
func (h *EndpointHealth) UnmarshalJSON(data []byte) error {
	var raw endpointHealthJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rt, err := time.ParseDuration(raw.ResponseTime)
	if err != nil {
		return err
	}
	*h = *NewEndpointHealth(raw.CheckTimeUTC, rt, raw.Status, raw.Details)
	return nil
}
