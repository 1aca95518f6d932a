package matching

import (
	"errors"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/tendermint/orderbook/types"
)

// MetricsSubsystem is a subsystem shared by all metrics exposed by this
// package.
const MetricsSubsystem = "matching"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of accepted orders, by side and kind.
	Submitted metrics.Counter
	// Number of rejected submissions, by reason.
	Rejected metrics.Counter
	// Number of fills against resting orders.
	Fills metrics.Counter
	// Number of orders that came to rest in the book.
	Rested metrics.Counter
	// Number of resting orders each accepted submission matched against.
	FillsPerOrder metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		Submitted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "submitted_orders",
			Help:      "Number of accepted orders.",
		}, []string{"side", "kind"}),
		Rejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "rejected_orders",
			Help:      "Number of rejected order submissions.",
		}, []string{"reason"}),
		Fills: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "fills",
			Help:      "Number of fills against resting orders.",
		}, []string{}),
		Rested: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "rested_orders",
			Help:      "Number of orders inserted into the book.",
		}, []string{}),
		FillsPerOrder: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "fills_per_order",
			Help:      "Number of resting orders matched by one submission.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 2, 10),
		}, []string{}),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Submitted:     discard.NewCounter(),
		Rejected:      discard.NewCounter(),
		Fills:         discard.NewCounter(),
		Rested:        discard.NewCounter(),
		FillsPerOrder: discard.NewHistogram(),
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, types.ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, types.ErrTimeInForceNotAllowed):
		return "time_in_force_not_allowed"
	case errors.Is(err, types.ErrTokenNotAllowed):
		return "token_not_allowed"
	case errors.Is(err, types.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, types.ErrOverflow):
		return "overflow"
	default:
		return "internal"
	}
}
