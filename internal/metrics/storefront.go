package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for cart and coupon operations.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// StorefrontMetrics records cart, coupon and checkout activity.
type StorefrontMetrics struct {
	cartMutations      *prometheus.CounterVec
	couponApplications *prometheus.CounterVec
	ordersCompleted    prometheus.Counter
	orderValue         prometheus.Histogram
	queueWait          *prometheus.HistogramVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder that drops everything.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"operation", "outcome"})
	couponApplications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_coupon_applications_total",
		Help: "Coupon selections by discount type and outcome.",
	}, []string{"discount_type", "outcome"})
	ordersCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_completed_total",
		Help: "Completed checkouts.",
	})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_value",
		Help:    "Final order totals in the smallest currency unit.",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
	})
	queueWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_queue_wait_seconds",
		Help:    "Time a mutation waited for its single-writer queue.",
		Buckets: prometheus.DefBuckets,
	}, []string{"queue"})
	reg.MustRegister(cartMutations, couponApplications, ordersCompleted, orderValue, queueWait)
	return &StorefrontMetrics{
		cartMutations:      cartMutations,
		couponApplications: couponApplications,
		ordersCompleted:    ordersCompleted,
		orderValue:         orderValue,
		queueWait:          queueWait,
	}
}

// IncCartMutation counts one cart mutation.
func (m *StorefrontMetrics) IncCartMutation(operation, outcome string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// IncCouponApplication counts one coupon selection attempt.
func (m *StorefrontMetrics) IncCouponApplication(discountType, outcome string) {
	if m == nil || m.couponApplications == nil {
		return
	}
	m.couponApplications.WithLabelValues(normalizeLabel(discountType), normalizeLabel(outcome)).Inc()
}

// ObserveOrder records a completed checkout and its final total.
func (m *StorefrontMetrics) ObserveOrder(total int64) {
	if m == nil || m.ordersCompleted == nil {
		return
	}
	m.ordersCompleted.Inc()
	m.orderValue.Observe(float64(total))
}

// ObserveQueueWait records how long a mutation waited for its queue.
func (m *StorefrontMetrics) ObserveQueueWait(queue string, wait time.Duration) {
	if m == nil || m.queueWait == nil {
		return
	}
	m.queueWait.WithLabelValues(normalizeLabel(queue)).Observe(wait.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
