package toast

// Removal reasons reported to Metrics.
const (
	ReasonExpired   = "expired"
	ReasonDismissed = "dismissed"
)

// Metrics receives lifecycle counts. Implementations must be safe for concurrent use.
type Metrics interface {
	ToastEnqueued(kind string)
	ToastRemoved(reason string)
	ToastCenters(n int)
}

type noopMetrics struct{}

func (noopMetrics) ToastEnqueued(string) {}
func (noopMetrics) ToastRemoved(string)  {}
func (noopMetrics) ToastCenters(int)     {}
