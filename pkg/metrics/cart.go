package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart engine activity.
type CartMetrics struct {
	itemsAdded prometheus.Counter
	mutations  *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	itemsAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Units added to carts, incremented by quantity on successful adds.",
	})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Successful cart mutations by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_failures_total",
		Help: "Failed cart operations by operation.",
	}, []string{"op"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart engine operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(itemsAdded, mutations, failures, duration)
	return &CartMetrics{
		itemsAdded: itemsAdded,
		mutations:  mutations,
		failures:   failures,
		duration:   duration,
	}
}

// AddItems increments the items-added counter by the quantity added.
func (c *CartMetrics) AddItems(qty int64) {
	if c == nil || c.itemsAdded == nil || qty <= 0 {
		return
	}
	c.itemsAdded.Add(float64(qty))
}

// IncMutation increments the success counter for the named operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (c *CartMetrics) IncFailure(op string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveDuration records the duration of the named operation.
func (c *CartMetrics) ObserveDuration(op string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
