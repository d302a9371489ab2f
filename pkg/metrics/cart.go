package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "storefront"

// Cart operation labels.
const (
	CartOpAdd    = "add"
	CartOpUpdate = "update"
	CartOpRemove = "remove"
	CartOpClear  = "clear"
)

// CartMetrics counts cart mutations by outcome and tracks cart size.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	lines     prometheus.Histogram
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	lines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cart_line_items",
		Help:      "Number of line items in a cart after a successful mutation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})
	reg.MustRegister(mutations, lines)
	return &CartMetrics{mutations: mutations, lines: lines}
}

// Succeeded records a persisted mutation and the resulting line count.
func (c *CartMetrics) Succeeded(op string, lineCount int) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op), "ok").Inc()
	c.lines.Observe(float64(lineCount))
}

// Failed records a rejected or failed mutation. reason is usually an error code.
func (c *CartMetrics) Failed(op, reason string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
