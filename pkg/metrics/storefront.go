package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Storefront records cart and checkout activity.
type Storefront struct {
	linesAdded   prometheus.Counter
	linesRemoved prometheus.Counter
	orders       *prometheus.CounterVec
	orderValue   prometheus.Histogram
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder that drops everything.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	linesAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_lines_added_total",
		Help: "Configured items added to the cart.",
	})
	linesRemoved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_lines_removed_total",
		Help: "Cart lines removed on request.",
	})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_total",
		Help: "Order submissions by result.",
	}, []string{"result"})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_value",
		Help:    "Total value of successfully submitted orders.",
		Buckets: []float64{10, 20, 40, 60, 80, 120, 200, 400},
	})
	reg.MustRegister(linesAdded, linesRemoved, orders, orderValue)
	return &Storefront{
		linesAdded:   linesAdded,
		linesRemoved: linesRemoved,
		orders:       orders,
		orderValue:   orderValue,
	}
}

func (s *Storefront) LineAdded() {
	if s == nil || s.linesAdded == nil {
		return
	}
	s.linesAdded.Inc()
}

func (s *Storefront) LineRemoved() {
	if s == nil || s.linesRemoved == nil {
		return
	}
	s.linesRemoved.Inc()
}

// OrderSubmitted counts a successful order and observes its total.
func (s *Storefront) OrderSubmitted(total decimal.Decimal) {
	if s == nil || s.orders == nil {
		return
	}
	s.orders.WithLabelValues(resultSuccess).Inc()
	s.orderValue.Observe(total.InexactFloat64())
}

func (s *Storefront) OrderFailed() {
	if s == nil || s.orders == nil {
		return
	}
	s.orders.WithLabelValues(resultFailure).Inc()
}
