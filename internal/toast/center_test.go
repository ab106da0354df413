package toast

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu       sync.Mutex
	enqueued map[string]int
	removed  map[string]int
	centers  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{enqueued: map[string]int{}, removed: map[string]int{}}
}

func (m *recordingMetrics) ToastEnqueued(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued[kind]++
}

func (m *recordingMetrics) ToastRemoved(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed[reason]++
}

func (m *recordingMetrics) ToastCenters(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.centers = n
}

func (m *recordingMetrics) removedCount(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removed[reason]
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("t-%d", n)
	}
}

type advancer interface {
	Advance(d time.Duration)
}

func newTestCenter(t *testing.T) (*Center, advancer, *recordingMetrics) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	metrics := newRecordingMetrics()
	c := NewCenter(WithClock(clock), WithIDGenerator(sequentialIDs()), WithMetrics(metrics))
	return c, clock, metrics
}

func TestRenderPreservesEnqueueOrder(t *testing.T) {
	c, _, _ := newTestCenter(t)

	messages := []string{"first", "second", "third", "fourth"}
	for _, msg := range messages {
		_, ok := c.Enqueue(msg, KindInfo, time.Minute)
		require.True(t, ok)
	}

	views := c.Render()
	require.Len(t, views, len(messages))
	for i, msg := range messages {
		assert.Equal(t, msg, views[i].Message)
	}
}

func TestEnqueueRejectsEmptyMessage(t *testing.T) {
	c, _, metrics := newTestCenter(t)

	id, ok := c.Enqueue("", KindError, time.Second)
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Empty(t, c.Render())
	assert.Empty(t, metrics.enqueued)
}

func TestEnqueueNormalizesKind(t *testing.T) {
	c, _, _ := newTestCenter(t)

	c.Enqueue("unknown", Kind("shout"), 0)
	c.Enqueue("missing", "", 0)
	c.Enqueue("upper", Kind("WARNING"), 0)

	views := c.Render()
	require.Len(t, views, 3)
	assert.Equal(t, KindInfo, views[0].Kind)
	assert.Equal(t, KindInfo, views[1].Kind)
	assert.Equal(t, KindWarning, views[2].Kind)
}

func TestEnqueueMintsFreshIDs(t *testing.T) {
	c := NewCenter(WithClock(clockwork.NewFakeClock()))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, ok := c.Enqueue("hello", KindInfo, time.Minute)
		require.True(t, ok)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestEnqueueReplacesCollidingGeneratedID(t *testing.T) {
	c := NewCenter(WithClock(clockwork.NewFakeClock()), WithIDGenerator(func() string { return "same" }))

	first, _ := c.Enqueue("a", KindInfo, time.Minute)
	second, _ := c.Enqueue("b", KindInfo, time.Minute)

	assert.Equal(t, "same", first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, c.Len())
}

func TestTimerExpiryRemovesEntry(t *testing.T) {
	c, clock, metrics := newTestCenter(t)

	id, _ := c.Enqueue("saved", KindSuccess, 0)
	keep, _ := c.Enqueue("longer", KindInfo, 10*time.Second)

	clock.Advance(DefaultDuration - time.Millisecond)
	assert.Equal(t, 2, c.Len())

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)

	views := c.Render()
	assert.Equal(t, keep, views[0].ID)
	assert.NotEqual(t, id, views[0].ID)
	assert.Equal(t, 1, metrics.removedCount(ReasonExpired))
}

func TestDismissIsIdempotent(t *testing.T) {
	c, _, metrics := newTestCenter(t)

	id, _ := c.Enqueue("bye", KindInfo, time.Minute)

	assert.True(t, c.Dismiss(id))
	assert.False(t, c.Dismiss(id))
	assert.False(t, c.Dismiss("never-existed"))
	assert.Empty(t, c.Render())
	assert.Equal(t, 1, metrics.removedCount(ReasonDismissed))
}

func TestDismissCancelsPendingTimer(t *testing.T) {
	c, clock, metrics := newTestCenter(t)

	id, _ := c.Enqueue("early", KindInfo, time.Second)
	require.True(t, c.Dismiss(id))

	later, _ := c.Enqueue("later", KindInfo, time.Minute)
	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)

	views := c.Render()
	require.Len(t, views, 1)
	assert.Equal(t, later, views[0].ID)
	assert.Equal(t, 0, metrics.removedCount(ReasonExpired))
	assert.Equal(t, 1, metrics.removedCount(ReasonDismissed))
}

func TestStaleExpiryDoesNotRemoveReplacement(t *testing.T) {
	c := NewCenter(WithClock(clockwork.NewFakeClock()), WithIDGenerator(func() string { return "reused" }))

	c.Enqueue("original", KindInfo, time.Minute)
	c.mu.Lock()
	stale := c.byID["reused"]
	c.mu.Unlock()
	require.True(t, c.Dismiss("reused"))

	_, ok := c.Enqueue("replacement", KindInfo, time.Minute)
	require.True(t, ok)

	// A timer that fired before Dismiss took the lock still holds the old entry.
	c.expire(stale)

	views := c.Render()
	require.Len(t, views, 1)
	assert.Equal(t, "replacement", views[0].Message)
}

func TestDismissAll(t *testing.T) {
	c, clock, metrics := newTestCenter(t)

	c.Enqueue("a", KindInfo, time.Second)
	c.Enqueue("b", KindError, time.Second)

	assert.Equal(t, 2, c.DismissAll())
	assert.Equal(t, 0, c.DismissAll())

	clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, metrics.removedCount(ReasonExpired))
	assert.Equal(t, 2, metrics.removedCount(ReasonDismissed))
}

func TestRenderDoesNotMutate(t *testing.T) {
	c, _, _ := newTestCenter(t)
	c.Enqueue("a", KindInfo, time.Minute)

	views := c.Render()
	views[0].Message = "changed"

	assert.Equal(t, "a", c.Render()[0].Message)
	assert.Equal(t, 1, c.Len())
}

func TestSubscribeSignalsChanges(t *testing.T) {
	c, clock, _ := newTestCenter(t)

	ch, cancel := c.Subscribe()
	defer cancel()
	assert.Equal(t, 1, c.Subscribers())

	id, _ := c.Enqueue("hello", KindInfo, time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("expected signal after enqueue")
	}

	c.Dismiss(id)
	select {
	case <-ch:
	default:
		t.Fatal("expected signal after dismiss")
	}

	c.Enqueue("expiring", KindInfo, time.Second)
	<-ch
	clock.Advance(time.Second)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected signal after expiry")
	}

	cancel()
	cancel()
	assert.Equal(t, 0, c.Subscribers())
}

func TestSubscribeCoalescesSignals(t *testing.T) {
	c, _, _ := newTestCenter(t)
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Enqueue("a", KindInfo, time.Minute)
	c.Enqueue("b", KindInfo, time.Minute)
	c.Enqueue("c", KindInfo, time.Minute)

	<-ch
	select {
	case <-ch:
		t.Fatal("signals should coalesce into one")
	default:
	}
	assert.Len(t, c.Render(), 3)
}

func TestConcurrentEnqueueAndDismiss(t *testing.T) {
	c := NewCenter(WithClock(clockwork.NewFakeClock()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := c.Enqueue("x", KindInfo, time.Minute)
			c.Dismiss(id)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, c.Len())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindSuccess, ParseKind("success"))
	assert.Equal(t, KindError, ParseKind(" Error "))
	assert.Equal(t, KindInfo, ParseKind(""))
	assert.Equal(t, KindInfo, ParseKind("critical"))
	assert.True(t, KindWarning.Valid())
	assert.False(t, Kind("WARNING").Valid())
}
