package health

import "fmt"

// Status is the classified health of an endpoint.
//
// Values are totally ordered. NotRun and NotExists are pre-check states and
// are never the outcome of a sampler run that reached a probe.
type Status int

const (
	// StatusNotRun means no check has produced a result yet.
	StatusNotRun Status = iota - 1
	// StatusNotExists means the probe reported that the target does not exist.
	StatusNotExists
	// StatusOffline means the target refused or could not accept a connection.
	StatusOffline
	// StatusHealthy means the target responded within the latency limit.
	StatusHealthy
	// StatusFaulty means the probe failed or reported a fault.
	StatusFaulty
	// StatusUnhealthy means the target responded but exceeded the latency limit.
	StatusUnhealthy
	// StatusTimedOut means the short timeout fired before the probe settled.
	StatusTimedOut
)

var statusNames = map[Status]string{
	StatusNotRun:    "notRun",
	StatusNotExists: "notExists",
	StatusOffline:   "offline",
	StatusHealthy:   "healthy",
	StatusFaulty:    "faulty",
	StatusUnhealthy: "unhealthy",
	StatusTimedOut:  "timedOut",
}

// String returns the string representation of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus parses a status name as produced by String.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusNotRun, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RequiresShortTimeout reports whether an endpoint last seen with this
// status should be probed with the short timeout.
func (s Status) RequiresShortTimeout() bool {
	switch s {
	case StatusHealthy, StatusNotRun, StatusOffline, StatusNotExists:
		return true
	default:
		return false
	}
}
