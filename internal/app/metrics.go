package app

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is a subsystem shared by all metrics exposed by this
// package.
const MetricsSubsystem = "app"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Height of the last committed block.
	Height metrics.Gauge
	// Number of delivered transactions, by return code.
	DeliveredTxs metrics.Counter
	// Number of transactions rejected by CheckTx.
	FailedCheckTxs metrics.Counter
	// Number of keys written by each committed block.
	BlockWrites metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		Height: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "height",
			Help:      "Height of the last committed block.",
		}, []string{}),
		DeliveredTxs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "delivered_txs",
			Help:      "Number of delivered transactions.",
		}, []string{"code"}),
		FailedCheckTxs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "failed_check_txs",
			Help:      "Number of transactions rejected by CheckTx.",
		}, []string{}),
		BlockWrites: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_writes",
			Help:      "Number of keys written by a committed block.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 4, 8),
		}, []string{}),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Height:         discard.NewGauge(),
		DeliveredTxs:   discard.NewCounter(),
		FailedCheckTxs: discard.NewCounter(),
		BlockWrites:    discard.NewHistogram(),
	}
}
