package settlement

import "github.com/prometheus/client_golang/prometheus"

var (
	settlementRuns       *prometheus.CounterVec
	settlementDuration   prometheus.Histogram
	modelInconsistencies prometheus.Counter
	candidateOrders      prometheus.Gauge
	regulatingMarketCost prometheus.Gauge
)

func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Counter, prometheus.Gauge, prometheus.Gauge) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_runs_total",
			Help: "Number of settlement passes by mode",
		},
		[]string{"mode"},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Duration of a settlement pass",
			Buckets: prometheus.DefBuckets,
		},
	)
	inc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_model_inconsistencies_total",
			Help: "Number of curve or VCG inconsistencies detected",
		},
	)
	cand := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "settlement_candidate_orders",
			Help: "Broker balancing orders on the last merit order",
		},
	)
	cost := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "settlement_regulating_market_cost",
			Help: "Cost of the regulating market in the last settlement",
		},
	)
	return runs, dur, inc, cand, cost
}

func init() {
	settlementRuns, settlementDuration, modelInconsistencies, candidateOrders, regulatingMarketCost = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the settlement collectors on reg, or on the
// default registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(settlementRuns, settlementDuration, modelInconsistencies, candidateOrders, regulatingMarketCost)
}

// ResetMetrics recreates the collectors and registers them on reg when it
// is not nil. Used by tests.
func ResetMetrics(reg prometheus.Registerer) {
	settlementRuns, settlementDuration, modelInconsistencies, candidateOrders, regulatingMarketCost = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
