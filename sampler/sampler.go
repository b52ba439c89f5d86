package sampler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/observe"
	"github.com/msusur/healthmonitoring/resilience"
)

// timeoutMessage is the detail attached to synthetic timeout results.
const timeoutMessage = "health check timeout"

// StatsSink receives every completed snapshot, including those that are
// later dropped because the endpoint was disposed.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: recording is fire-and-forget; failures are the sink's concern.
type StatsSink interface {
	RecordEndpointStatistics(ctx context.Context, id uuid.UUID, h *health.EndpointHealth)
}

// Sampler checks endpoints. It is safe for concurrent use.
type Sampler struct {
	settings Settings
	sink     StatsSink
	logger   observe.Logger
	metrics  observe.Metrics
	tracer   observe.Tracer
	clock    func() time.Time
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger used to report check outcomes.
func WithLogger(l observe.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the check metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(s *Sampler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer that wraps each check in a span.
func WithTracer(t observe.Tracer) Option {
	return func(s *Sampler) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the source of check start times.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) {
		if now != nil {
			s.clock = now
		}
	}
}

// New creates a Sampler.
func New(settings Settings, sink StatsSink, opts ...Option) (*Sampler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, ErrNilSink
	}

	s := &Sampler{
		settings: settings,
		sink:     sink,
		logger:   observe.NopLogger(),
		metrics:  observe.NoopMetrics(),
		tracer:   observe.NoopTracer(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Settings returns the sampler settings.
func (s *Sampler) Settings() Settings {
	return s.settings
}

// CheckHealth performs one check of ep and returns the classified snapshot.
//
// The snapshot is recorded in the stats sink but not committed to ep; use
// ep.CheckHealth for that. The returned error is non-nil only when ctx was
// cancelled before the check resolved, and nothing is recorded in that case.
func (s *Sampler) CheckHealth(ctx context.Context, ep *health.Endpoint) (*health.EndpointHealth, error) {
	checkTime := s.clock().UTC()
	timeout, timeoutStatus := s.timeoutFor(ep.Health())

	meta := endpointMeta(ep)
	logger := s.logger.WithEndpoint(meta)

	ctx, span := s.tracer.StartSpan(ctx, meta)

	probe := ep.Probe()
	address := ep.Address()
	race, err := resilience.Race(ctx, timeout, func(ctx context.Context) (health.ProbeResult, error) {
		if probe == nil {
			return health.ProbeResult{}, health.ErrNilProbe
		}
		return probe.CheckHealth(ctx, address)
	})
	if err != nil {
		s.metrics.RecordAborted(ctx, meta)
		s.tracer.EndSpan(span, "", err)
		logger.Debug(ctx, "health check aborted", observe.Field{Key: "error", Value: err.Error()})
		return nil, err
	}

	raw := race.Value
	if race.TimedOut {
		raw = health.ProbeResult{
			Status:  timeoutStatus,
			Details: map[string]string{"message": timeoutMessage},
		}
	}

	var (
		status  health.Status
		details map[string]string
	)
	if race.Err != nil {
		status, details = health.StatusFaulty, faultDetails(race.Err)
	} else {
		status, details = s.classify(raw, race.Elapsed)
	}

	h := health.NewEndpointHealth(checkTime, race.Elapsed, status, details)

	s.sink.RecordEndpointStatistics(ctx, ep.ID(), h)
	s.report(ctx, logger, meta, h)
	s.tracer.EndSpan(span, status.String(), nil)

	return h, nil
}

// timeoutFor picks the timeout and the status reported when it fires.
func (s *Sampler) timeoutFor(last *health.EndpointHealth) (time.Duration, health.ProbeStatus) {
	if last == nil || last.Status().RequiresShortTimeout() {
		return s.settings.ShortTimeout, health.ProbeTimedOut
	}
	return s.settings.FailureTimeout, health.ProbeFaulty
}

// classify maps a raw probe result onto a status, downgrading slow healthy
// responses to unhealthy.
func (s *Sampler) classify(raw health.ProbeResult, elapsed time.Duration) (health.Status, map[string]string) {
	status, err := raw.Status.Status()
	if err != nil {
		details := maps.Clone(raw.Details)
		if details == nil {
			details = make(map[string]string, 2)
		}
		maps.Copy(details, faultDetails(err))
		return health.StatusFaulty, details
	}

	if status == health.StatusHealthy && elapsed > s.settings.HealthyResponseTimeLimit {
		return health.StatusUnhealthy, raw.Details
	}
	return status, raw.Details
}

func (s *Sampler) report(ctx context.Context, logger observe.Logger, meta observe.EndpointMeta, h *health.EndpointHealth) {
	s.metrics.RecordCheck(ctx, meta, h.Status().String(), h.ResponseTime())

	fields := []observe.Field{
		{Key: "status", Value: h.Status().String()},
		{Key: "response_time_ms", Value: h.ResponseTime().Milliseconds()},
	}

	switch h.Status() {
	case health.StatusTimedOut, health.StatusUnhealthy:
		logger.Warn(ctx, "health check completed", fields...)
	case health.StatusFaulty:
		fields = append(fields, observe.Field{Key: "details", Value: h.PrettyDetails()})
		logger.Error(ctx, "health check completed", fields...)
	default:
		logger.Info(ctx, "health check completed", fields...)
	}
}

// faultDetails describes a probe failure.
func faultDetails(err error) map[string]string {
	return map[string]string{
		"reason":    err.Error(),
		"exception": describeError(err),
	}
}

// describeError renders the error type and its unwrap chain, outermost
// first, one "type: message" line per link.
func describeError(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%T: %v", e, e)
	}
	return b.String()
}

func endpointMeta(ep *health.Endpoint) observe.EndpointMeta {
	return observe.EndpointMeta{
		ID:          ep.ID().String(),
		Name:        ep.Name(),
		Group:       ep.Group(),
		MonitorType: ep.MonitorType(),
		Address:     ep.Address(),
	}
}

var _ health.Sampler = (*Sampler)(nil)
