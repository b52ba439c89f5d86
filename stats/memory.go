package stats

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/msusur/healthmonitoring/health"
)

// Memory keeps the most recent snapshots of each endpoint in memory.
type Memory struct {
	mu      sync.RWMutex
	limit   int
	history map[uuid.UUID][]*health.EndpointHealth
}

// NewMemory creates an in-memory store keeping limit snapshots per
// endpoint. A non-positive limit uses DefaultHistory.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &Memory{
		limit:   limit,
		history: make(map[uuid.UUID][]*health.EndpointHealth),
	}
}

// RecordEndpointStatistics appends h to the history of id, evicting the
// oldest snapshot once the limit is reached.
func (m *Memory) RecordEndpointStatistics(_ context.Context, id uuid.UUID, h *health.EndpointHealth) {
	if h == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hist := append(m.history[id], h)
	if over := len(hist) - m.limit; over > 0 {
		hist = slices.Delete(hist, 0, over)
	}
	m.history[id] = hist
}

// History returns the snapshots of id, newest first.
func (m *Memory) History(_ context.Context, id uuid.UUID) ([]*health.EndpointHealth, error) {
	m.mu.RLock()
	out := slices.Clone(m.history[id])
	m.mu.RUnlock()

	slices.Reverse(out)
	return out, nil
}

// Latest returns the newest snapshot of id.
func (m *Memory) Latest(id uuid.UUID) (*health.EndpointHealth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist := m.history[id]
	if len(hist) == 0 {
		return nil, false
	}
	return hist[len(hist)-1], true
}

// Forget drops the history of id.
func (m *Memory) Forget(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, id)
	return nil
}

var _ Store = (*Memory)(nil)
