package metrics

import (
	"errors"
	"strconv"

	coremetrics "github.com/kilianp07/balancemkt/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records settlement outcomes in Prometheus metrics.
type PromSink struct {
	settlements  *prometheus.CounterVec
	budget       *prometheus.GaugeVec
	imbalance    prometheus.Gauge
	charges      *prometheus.GaugeVec
	curtailment  *prometheus.GaugeVec
	transactions *prometheus.CounterVec
	reports      *prometheus.CounterVec
	reportDelay  prometheus.Histogram
}

// NewPromSink registers settlement metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.settlements, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balancing_settlements_total",
		Help: "Settled timeslots by strategy and pricing mode",
	}, []string{"strategy", "mode"})); err != nil {
		return nil, err
	}
	if s.budget, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "balancing_last_settlement_cost",
		Help: "Regulating market and broker cost of the last settled timeslot",
	}, []string{"side"})); err != nil {
		return nil, err
	}
	if s.imbalance, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "balancing_net_imbalance_kwh",
		Help: "Total imbalance of the last settled timeslot",
	})); err != nil {
		return nil, err
	}
	// Charges and curtailment carry a sign, so they accumulate in gauges.
	if s.charges, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "balancing_broker_charges",
		Help: "Cumulative balancing charges per broker and component",
	}, []string{"broker_id", "component"})); err != nil {
		return nil, err
	}
	if s.curtailment, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "balancing_curtailment_kwh",
		Help: "Cumulative exercised balancing capacity per broker",
	}, []string{"broker_id"})); err != nil {
		return nil, err
	}
	if s.transactions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balancing_transactions_total",
		Help: "Balancing transactions posted to the ledger",
	}, []string{"accepted"})); err != nil {
		return nil, err
	}
	if s.reports, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "balancing_reports_total",
		Help: "Balance reports broadcast",
	}, []string{"published"})); err != nil {
		return nil, err
	}
	if s.reportDelay, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "balancing_report_latency_seconds",
		Help:    "Time spent broadcasting a balance report",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordSettlement counts the pass and exposes its costs.
func (s *PromSink) RecordSettlement(rec coremetrics.SettlementRecord) error {
	mode := "auction"
	if rec.Flat {
		mode = "flat"
	}
	s.settlements.WithLabelValues(rec.Strategy, mode).Inc()
	s.budget.WithLabelValues("regulating_market").Set(rec.RegulatingMarketCost)
	s.budget.WithLabelValues("brokers").Set(rec.BrokerCost)
	s.imbalance.Set(rec.TotalImbalanceKWh)
	return nil
}

// RecordCharges accumulates p1, p2 and curtailment per broker.
func (s *PromSink) RecordCharges(recs []coremetrics.ChargeRecord) error {
	for _, r := range recs {
		s.charges.WithLabelValues(r.BrokerID, "p1").Add(r.P1)
		s.charges.WithLabelValues(r.BrokerID, "p2").Add(r.P2)
		s.curtailment.WithLabelValues(r.BrokerID).Add(r.CurtailmentKWh)
	}
	return nil
}

// RecordTransaction counts ledger postings.
func (s *PromSink) RecordTransaction(rec coremetrics.TransactionRecord) error {
	s.transactions.WithLabelValues(strconv.FormatBool(rec.Accepted)).Inc()
	return nil
}

// RecordReport counts report broadcasts and their latency.
func (s *PromSink) RecordReport(rec coremetrics.ReportRecord) error {
	s.reports.WithLabelValues(strconv.FormatBool(rec.Published)).Inc()
	s.reportDelay.Observe(rec.Latency.Seconds())
	return nil
}
