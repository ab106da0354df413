package toast

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultIdleTTL = 30 * time.Minute

type HubParams struct {
	Clock           clockwork.Clock
	DefaultDuration time.Duration
	IdleTTL         time.Duration
	Metrics         Metrics
}

// Hub owns one Center per user.
type Hub struct {
	mu      sync.Mutex
	centers map[string]*Center

	clock    clockwork.Clock
	fallback time.Duration
	idleTTL  time.Duration
	metrics  Metrics
}

func NewHub(params HubParams) *Hub {
	h := &Hub{
		centers:  map[string]*Center{},
		clock:    params.Clock,
		fallback: params.DefaultDuration,
		idleTTL:  params.IdleTTL,
		metrics:  params.Metrics,
	}
	if h.clock == nil {
		h.clock = clockwork.NewRealClock()
	}
	if h.fallback <= 0 {
		h.fallback = DefaultDuration
	}
	if h.idleTTL <= 0 {
		h.idleTTL = defaultIdleTTL
	}
	if h.metrics == nil {
		h.metrics = noopMetrics{}
	}
	return h
}

// Center returns the user's center, creating it on first use.
func (h *Hub) Center(userID string) *Center {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.centers[userID]; ok {
		c.touch()
		return c
	}
	c := NewCenter(
		WithClock(h.clock),
		WithDefaultDuration(h.fallback),
		WithMetrics(h.metrics),
	)
	h.centers[userID] = c
	h.metrics.ToastCenters(len(h.centers))
	return c
}

func (h *Hub) lookup(userID string) (*Center, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.centers[userID]
	return c, ok
}

func (h *Hub) Enqueue(userID, message string, kind Kind, duration time.Duration) (string, bool) {
	if message == "" {
		return "", false
	}
	return h.Center(userID).Enqueue(message, kind, duration)
}

func (h *Hub) Dismiss(userID, id string) bool {
	c, ok := h.lookup(userID)
	if !ok {
		return false
	}
	return c.Dismiss(id)
}

func (h *Hub) Render(userID string) []View {
	c, ok := h.lookup(userID)
	if !ok {
		return []View{}
	}
	return c.Render()
}

// Broadcast enqueues the toast into every live center and returns how many accepted it.
func (h *Hub) Broadcast(message string, kind Kind, duration time.Duration) int {
	// Held across the enqueues so Sweep cannot evict a center between
	// selection and delivery. Lock order is hub then center, as in Sweep.
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, c := range h.centers {
		if _, ok := c.Enqueue(message, kind, duration); ok {
			delivered++
		}
	}
	return delivered
}

// Sweep drops centers that are empty, unwatched and idle past the TTL.
func (h *Hub) Sweep() int {
	now := h.clock.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	for userID, c := range h.centers {
		if c.idle(now, h.idleTTL) {
			delete(h.centers, userID)
			evicted++
		}
	}
	if evicted > 0 {
		h.metrics.ToastCenters(len(h.centers))
	}
	return evicted
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.centers)
}
