package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order creation outcomes.
type CheckoutMetrics struct {
	orders    *prometheus.CounterVec
	conflicts prometheus.Counter
	totalXAF  prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders created through checkout.",
	}, []string{"city"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_stock_conflicts_total",
		Help: "Checkouts rejected for insufficient stock.",
	})
	totalXAF := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_order_total_xaf",
		Help:    "Order totals in XAF.",
		Buckets: prometheus.ExponentialBuckets(500, 2.5, 8),
	})
	reg.MustRegister(orders, conflicts, totalXAF)
	return &CheckoutMetrics{
		orders:    orders,
		conflicts: conflicts,
		totalXAF:  totalXAF,
	}
}

// IncOrder counts a successful checkout for the city.
func (c *CheckoutMetrics) IncOrder(city string, totalXAF int) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.WithLabelValues(city).Inc()
	c.totalXAF.Observe(float64(totalXAF))
}

// IncStockConflict counts a checkout rejected by the stock guard.
func (c *CheckoutMetrics) IncStockConflict() {
	if c == nil || c.conflicts == nil {
		return
	}
	c.conflicts.Inc()
}
