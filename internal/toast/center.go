// Package toast keeps short-lived, auto-dismissing notifications per user.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultDuration applies when an enqueue asks for a non-positive duration.
const DefaultDuration = 3000 * time.Millisecond

// View is the presentation record handed to clients.
type View struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

type entry struct {
	view  View
	timer clockwork.Timer
}

// Center holds the active toasts of one owner in display order. Each entry owns
// exactly one pending timer; whichever of expiry or Dismiss runs first removes it.
type Center struct {
	mu sync.Mutex

	clock    clockwork.Clock
	newID    func() string
	fallback time.Duration
	metrics  Metrics

	entries []*entry
	byID    map[string]*entry

	subs    map[int]chan struct{}
	nextSub int

	lastActivity time.Time
}

type Option func(*Center)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Center) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides id minting. Generated ids must be unique.
func WithIDGenerator(fn func() string) Option {
	return func(c *Center) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func WithDefaultDuration(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.fallback = d
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(c *Center) {
		if m != nil {
			c.metrics = m
		}
	}
}

func NewCenter(opts ...Option) *Center {
	c := &Center{
		clock:    clockwork.NewRealClock(),
		newID:    uuid.NewString,
		fallback: DefaultDuration,
		metrics:  noopMetrics{},
		byID:     map[string]*entry{},
		subs:     map[int]chan struct{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastActivity = c.clock.Now()
	return c
}

// Enqueue appends a toast and starts its auto-dismiss timer. An empty message is
// dropped and reported with ok=false; kind and duration are normalized.
func (c *Center) Enqueue(message string, kind Kind, duration time.Duration) (id string, ok bool) {
	if message == "" {
		return "", false
	}
	kind = ParseKind(string(kind))
	if duration <= 0 {
		duration = c.fallback
	}

	c.mu.Lock()
	id = c.newID()
	if _, taken := c.byID[id]; taken || id == "" {
		id = uuid.NewString()
	}
	e := &entry{view: View{ID: id, Message: message, Kind: kind}}
	e.timer = c.clock.AfterFunc(duration, func() { c.expire(e) })
	c.entries = append(c.entries, e)
	c.byID[id] = e
	c.changedLocked()
	c.mu.Unlock()

	c.metrics.ToastEnqueued(string(kind))
	return id, true
}

// Dismiss removes the toast with id and cancels its timer. Unknown ids are a no-op.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	e, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	e.timer.Stop()
	c.removeLocked(e)
	c.changedLocked()
	c.mu.Unlock()

	c.metrics.ToastRemoved(ReasonDismissed)
	return true
}

// DismissAll removes every toast and returns how many were removed.
func (c *Center) DismissAll() int {
	c.mu.Lock()
	removed := len(c.entries)
	for _, e := range c.entries {
		e.timer.Stop()
	}
	c.entries = nil
	c.byID = map[string]*entry{}
	if removed > 0 {
		c.changedLocked()
	}
	c.mu.Unlock()

	for i := 0; i < removed; i++ {
		c.metrics.ToastRemoved(ReasonDismissed)
	}
	return removed
}

// expire runs on the timer goroutine. It only acts if e is still the live entry for its id.
func (c *Center) expire(e *entry) {
	c.mu.Lock()
	if cur, ok := c.byID[e.view.ID]; !ok || cur != e {
		c.mu.Unlock()
		return
	}
	c.removeLocked(e)
	c.changedLocked()
	c.mu.Unlock()

	c.metrics.ToastRemoved(ReasonExpired)
}

func (c *Center) removeLocked(e *entry) {
	delete(c.byID, e.view.ID)
	for i, cur := range c.entries {
		if cur == e {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Render returns the toasts in display order.
func (c *Center) Render() []View {
	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]View, 0, len(c.entries))
	for _, e := range c.entries {
		views = append(views, e.view)
	}
	return views
}

func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe returns a channel that receives a signal after every change. Signals
// coalesce, so receivers should Render after each one.
func (c *Center) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	key := c.nextSub
	c.nextSub++
	c.subs[key] = ch
	c.lastActivity = c.clock.Now()
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, key)
			c.lastActivity = c.clock.Now()
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

func (c *Center) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// idle reports whether the center is empty, unwatched and untouched for at least ttl.
func (c *Center) idle(now time.Time, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries) == 0 && len(c.subs) == 0 && now.Sub(c.lastActivity) >= ttl
}

func (c *Center) touch() {
	c.mu.Lock()
	c.lastActivity = c.clock.Now()
	c.mu.Unlock()
}

func (c *Center) changedLocked() {
	c.lastActivity = c.clock.Now()
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
