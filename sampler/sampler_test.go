package sampler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/msusur/healthmonitoring/health"
	"github.com/msusur/healthmonitoring/observe"
	"github.com/msusur/healthmonitoring/resilience"
)

type record struct {
	id     uuid.UUID
	health *health.EndpointHealth
}

// uniformSettings gives every timeout the same one-second bound, so the
// chosen timeout never decides the outcome.
var uniformSettings = Settings{
	ShortTimeout:             time.Second,
	FailureTimeout:           time.Second,
	HealthyResponseTimeLimit: time.Second,
}

type recordingSink struct {
	mu      sync.Mutex
	records []record
}

func (s *recordingSink) RecordEndpointStatistics(_ context.Context, id uuid.UUID, h *health.EndpointHealth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record{id: id, health: h})
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// fixedSampler seeds an endpoint with a prior status.
type fixedSampler struct{ status health.Status }

func (f fixedSampler) CheckHealth(context.Context, *health.Endpoint) (*health.EndpointHealth, error) {
	return health.NewEndpointHealth(time.Now(), 0, f.status, nil), nil
}

// delayedProbe returns result after delay, or gives up when ctx ends.
func delayedProbe(delay time.Duration, result health.ProbeResult, err error) health.Probe {
	return health.NewProbeFunc("fake", func(ctx context.Context, _ string) (health.ProbeResult, error) {
		select {
		case <-time.After(delay):
			return result, err
		case <-ctx.Done():
			return health.ProbeResult{}, ctx.Err()
		}
	})
}

func newEndpoint(t *testing.T, probe health.Probe, last health.Status) *health.Endpoint {
	t.Helper()
	ep := health.NewEndpoint(uuid.New(), probe, "fake://target", "target", "test")
	if last != health.StatusNotRun {
		if err := ep.CheckHealth(context.Background(), fixedSampler{status: last}); err != nil {
			t.Fatalf("seeding status: %v", err)
		}
	}
	return ep
}

func newSampler(t *testing.T, settings Settings, opts ...Option) (*Sampler, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	s, err := New(settings, sink, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, sink
}

func within(t *testing.T, got, want, slack time.Duration) {
	t.Helper()
	if got < want || got > want+slack {
		t.Errorf("duration = %v, want within [%v, %v]", got, want, want+slack)
	}
}

var healthy = health.ProbeResult{Status: health.ProbeHealthy}

func TestCheckHealth_AdaptiveTimeoutScenario(t *testing.T) {
	s, sink := newSampler(t, Settings{
		ShortTimeout:             200 * time.Millisecond,
		FailureTimeout:           5 * time.Second,
		HealthyResponseTimeLimit: 500 * time.Millisecond,
	})

	var delay time.Duration
	probe := health.NewProbeFunc("fake", func(ctx context.Context, _ string) (health.ProbeResult, error) {
		return delayedProbe(delay, healthy, nil).CheckHealth(ctx, "")
	})
	ep := newEndpoint(t, probe, health.StatusNotRun)

	// No prior health: the short timeout wins over a 1s probe.
	delay = time.Second
	if err := ep.CheckHealth(context.Background(), s); err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	h := ep.Health()
	if h.Status() != health.StatusTimedOut {
		t.Fatalf("Status() = %v, want timedOut", h.Status())
	}
	within(t, h.ResponseTime(), 200*time.Millisecond, 150*time.Millisecond)
	if msg, _ := h.Detail("message"); msg != "health check timeout" {
		t.Errorf("message = %q", msg)
	}

	// Now timed out: the failure timeout applies and the probe answers.
	delay = 300 * time.Millisecond
	if err := ep.CheckHealth(context.Background(), s); err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	h = ep.Health()
	if h.Status() != health.StatusHealthy {
		t.Fatalf("Status() = %v, want healthy", h.Status())
	}
	within(t, h.ResponseTime(), 300*time.Millisecond, 150*time.Millisecond)

	if sink.len() != 2 {
		t.Errorf("sink records = %d, want 2", sink.len())
	}
}

func TestCheckHealth_TimeoutSelection(t *testing.T) {
	settings := Settings{
		ShortTimeout:             30 * time.Millisecond,
		FailureTimeout:           time.Second,
		HealthyResponseTimeLimit: time.Second,
	}

	tests := []struct {
		last health.Status
		want health.Status
	}{
		{health.StatusNotRun, health.StatusTimedOut},
		{health.StatusHealthy, health.StatusTimedOut},
		{health.StatusOffline, health.StatusTimedOut},
		{health.StatusNotExists, health.StatusTimedOut},
		{health.StatusFaulty, health.StatusHealthy},
		{health.StatusUnhealthy, health.StatusHealthy},
		{health.StatusTimedOut, health.StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.last.String(), func(t *testing.T) {
			s, _ := newSampler(t, settings)
			ep := newEndpoint(t, delayedProbe(150*time.Millisecond, healthy, nil), tt.last)

			h, err := s.CheckHealth(context.Background(), ep)
			if err != nil {
				t.Fatalf("CheckHealth() error = %v", err)
			}
			if h.Status() != tt.want {
				t.Errorf("Status() = %v, want %v", h.Status(), tt.want)
			}
		})
	}
}

func TestCheckHealth_FailureTimeoutYieldsFaulty(t *testing.T) {
	s, _ := newSampler(t, Settings{
		ShortTimeout:             20 * time.Millisecond,
		FailureTimeout:           100 * time.Millisecond,
		HealthyResponseTimeLimit: time.Second,
	})
	ep := newEndpoint(t, delayedProbe(time.Hour, healthy, nil), health.StatusFaulty)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if h.Status() != health.StatusFaulty {
		t.Errorf("Status() = %v, want faulty", h.Status())
	}
	within(t, h.ResponseTime(), 100*time.Millisecond, 150*time.Millisecond)
	if msg, _ := h.Detail("message"); msg != "health check timeout" {
		t.Errorf("message = %q", msg)
	}
}

func TestCheckHealth_LatencyClassification(t *testing.T) {
	settings := Settings{
		ShortTimeout:             time.Second,
		FailureTimeout:           time.Second,
		HealthyResponseTimeLimit: 50 * time.Millisecond,
	}

	tests := []struct {
		name  string
		delay time.Duration
		raw   health.ProbeStatus
		want  health.Status
	}{
		{"fast healthy", 0, health.ProbeHealthy, health.StatusHealthy},
		{"slow healthy", 120 * time.Millisecond, health.ProbeHealthy, health.StatusUnhealthy},
		{"slow offline stays offline", 120 * time.Millisecond, health.ProbeOffline, health.StatusOffline},
		{"not exists", 0, health.ProbeNotExists, health.StatusNotExists},
		{"raw faulty", 0, health.ProbeFaulty, health.StatusFaulty},
		{"raw timed out", 0, health.ProbeTimedOut, health.StatusTimedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSampler(t, settings)
			raw := health.ProbeResult{Status: tt.raw, Details: map[string]string{"code": "200"}}
			ep := newEndpoint(t, delayedProbe(tt.delay, raw, nil), health.StatusNotRun)

			h, err := s.CheckHealth(context.Background(), ep)
			if err != nil {
				t.Fatalf("CheckHealth() error = %v", err)
			}
			if h.Status() != tt.want {
				t.Errorf("Status() = %v, want %v", h.Status(), tt.want)
			}
			if code, _ := h.Detail("code"); code != "200" {
				t.Errorf("probe details not preserved: %v", h.Details())
			}
		})
	}
}

func TestCheckHealth_ProbeErrorIsFaulty(t *testing.T) {
	s, sink := newSampler(t, uniformSettings)
	probeErr := errors.New("connection reset by peer")
	ep := newEndpoint(t, delayedProbe(0, health.ProbeResult{}, probeErr), health.StatusNotRun)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if h.Status() != health.StatusFaulty {
		t.Fatalf("Status() = %v, want faulty", h.Status())
	}
	if reason, _ := h.Detail("reason"); reason != "connection reset by peer" {
		t.Errorf("reason = %q", reason)
	}
	if exc, _ := h.Detail("exception"); !strings.Contains(exc, "*errors.errorString") {
		t.Errorf("exception = %q", exc)
	}
	if sink.len() != 1 {
		t.Errorf("sink records = %d, want 1", sink.len())
	}
}

func TestCheckHealth_ProbeOwnCancellationIsFaulty(t *testing.T) {
	s, _ := newSampler(t, uniformSettings)
	ep := newEndpoint(t, delayedProbe(0, health.ProbeResult{}, context.Canceled), health.StatusNotRun)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if h.Status() != health.StatusFaulty {
		t.Errorf("Status() = %v, want faulty", h.Status())
	}
}

func TestCheckHealth_PanicIsFaulty(t *testing.T) {
	s, _ := newSampler(t, uniformSettings)
	probe := health.NewProbeFunc("fake", func(context.Context, string) (health.ProbeResult, error) {
		panic("nil map write")
	})
	ep := newEndpoint(t, probe, health.StatusNotRun)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if h.Status() != health.StatusFaulty {
		t.Fatalf("Status() = %v, want faulty", h.Status())
	}
	if reason, _ := h.Detail("reason"); !strings.Contains(reason, "nil map write") {
		t.Errorf("reason = %q", reason)
	}
	if exc, _ := h.Detail("exception"); !strings.Contains(exc, resilience.ErrPanic.Error()) {
		t.Errorf("exception = %q", exc)
	}
}

func TestCheckHealth_NilProbeIsFaulty(t *testing.T) {
	s, _ := newSampler(t, uniformSettings)
	ep := health.NewEndpoint(uuid.New(), nil, "nowhere", "orphan", "")

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if reason, _ := h.Detail("reason"); reason != health.ErrNilProbe.Error() {
		t.Errorf("reason = %q", reason)
	}
}

func TestCheckHealth_UnknownProbeStatusIsFaulty(t *testing.T) {
	s, _ := newSampler(t, uniformSettings)
	raw := health.ProbeResult{Status: "degraded", Details: map[string]string{"code": "299"}}
	ep := newEndpoint(t, delayedProbe(0, raw, nil), health.StatusNotRun)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if h.Status() != health.StatusFaulty {
		t.Fatalf("Status() = %v, want faulty", h.Status())
	}
	if reason, _ := h.Detail("reason"); !strings.Contains(reason, "degraded") {
		t.Errorf("reason = %q", reason)
	}
	if code, _ := h.Detail("code"); code != "299" {
		t.Errorf("code = %q", code)
	}
}

func TestCheckHealth_OuterCancellation(t *testing.T) {
	s, sink := newSampler(t, Settings{
		ShortTimeout:             time.Second,
		FailureTimeout:           5 * time.Second,
		HealthyResponseTimeLimit: time.Second,
	})

	returned := make(chan struct{})
	probe := health.NewProbeFunc("fake", func(ctx context.Context, _ string) (health.ProbeResult, error) {
		defer close(returned)
		<-ctx.Done()
		return health.ProbeResult{}, ctx.Err()
	})
	ep := newEndpoint(t, probe, health.StatusNotRun)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	err := ep.CheckHealth(ctx, s)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("CheckHealth() error = %v, want context.Canceled", err)
	}

	select {
	case <-returned:
	default:
		t.Error("probe still running after CheckHealth returned")
	}
	if sink.len() != 0 {
		t.Errorf("sink records = %d, want 0", sink.len())
	}
	if ep.Health() != nil {
		t.Error("cancelled check committed health")
	}
}

func TestCheckHealth_AlreadyCancelled(t *testing.T) {
	s, sink := newSampler(t, uniformSettings)
	called := false
	probe := health.NewProbeFunc("fake", func(context.Context, string) (health.ProbeResult, error) {
		called = true
		return healthy, nil
	})
	ep := newEndpoint(t, probe, health.StatusNotRun)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CheckHealth(ctx, ep); !errors.Is(err, context.Canceled) {
		t.Fatalf("CheckHealth() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("probe ran with a cancelled context")
	}
	if sink.len() != 0 {
		t.Errorf("sink records = %d, want 0", sink.len())
	}
}

func TestCheckHealth_DisposeDropsLateResult(t *testing.T) {
	s, sink := newSampler(t, uniformSettings)

	started := make(chan struct{})
	release := make(chan struct{})
	probe := health.NewProbeFunc("fake", func(context.Context, string) (health.ProbeResult, error) {
		close(started)
		<-release
		return healthy, nil
	})
	ep := newEndpoint(t, probe, health.StatusNotRun)

	errCh := make(chan error, 1)
	go func() { errCh <- ep.CheckHealth(context.Background(), s) }()

	<-started
	ep.Dispose()
	close(release)

	if err := <-errCh; err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if ep.Health() != nil {
		t.Error("late result committed after Dispose")
	}
	if !ep.IsDisposed() {
		t.Error("IsDisposed() = false")
	}
	if sink.len() != 1 {
		t.Errorf("sink records = %d, want 1", sink.len())
	}
}

func TestCheckHealth_SinkReceivesEndpointID(t *testing.T) {
	s, sink := newSampler(t, uniformSettings)
	ep := newEndpoint(t, delayedProbe(0, healthy, nil), health.StatusNotRun)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if sink.records[0].id != ep.ID() || sink.records[0].health != h {
		t.Errorf("sink record = %+v", sink.records[0])
	}
	if ep.Health() != nil {
		t.Error("Sampler.CheckHealth must not commit to the endpoint")
	}
}

func TestCheckHealth_Clock(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	fixed := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	s, _ := newSampler(t, uniformSettings,
		WithClock(func() time.Time { return fixed }))
	ep := newEndpoint(t, delayedProbe(0, healthy, nil), health.StatusNotRun)

	h, err := s.CheckHealth(context.Background(), ep)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if !h.CheckTime().Equal(fixed) || h.CheckTime().Location() != time.UTC {
		t.Errorf("CheckTime() = %v, want %v in UTC", h.CheckTime(), fixed)
	}
}

func TestCheckHealth_LogLevels(t *testing.T) {
	tests := []struct {
		name      string
		raw       health.ProbeResult
		err       error
		wantLevel string
	}{
		{"healthy", healthy, nil, "info"},
		{"offline", health.ProbeResult{Status: health.ProbeOffline}, nil, "info"},
		{"timed out", health.ProbeResult{Status: health.ProbeTimedOut}, nil, "warn"},
		{"faulty", health.ProbeResult{}, errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s, _ := newSampler(t, uniformSettings,
				WithLogger(observe.NewLoggerWithWriter("debug", &buf)))
			ep := newEndpoint(t, delayedProbe(0, tt.raw, tt.err), health.StatusNotRun)

			if _, err := s.CheckHealth(context.Background(), ep); err != nil {
				t.Fatalf("CheckHealth() error = %v", err)
			}

			var entry map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("invalid log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["endpoint.id"] != ep.ID().String() {
				t.Errorf("endpoint.id = %v", entry["endpoint.id"])
			}
			if _, ok := entry["response_time_ms"]; !ok {
				t.Error("missing response_time_ms")
			}
			_, hasDetails := entry["details"]
			if hasDetails != (tt.wantLevel == "error") {
				t.Errorf("details present = %v", hasDetails)
			}
		})
	}
}

func TestCheckHealth_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	s, _ := newSampler(t, uniformSettings, WithMetrics(metrics))
	ep := newEndpoint(t, delayedProbe(0, healthy, nil), health.StatusNotRun)
	for range 3 {
		if _, err := s.CheckHealth(context.Background(), ep); err != nil {
			t.Fatalf("CheckHealth() error = %v", err)
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "endpoint.check.total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 3 {
		t.Errorf("endpoint.check.total = %d, want 3", total)
	}
}
