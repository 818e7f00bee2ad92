package metrics

import "time"

// SettlementRecord summarises one settled timeslot.
type SettlementRecord struct {
	RunID                string
	Timeslot             int
	Strategy             string
	TotalImbalanceKWh    float64
	RegulatingMarketKWh  float64
	RegulatingMarketCost float64
	BrokerCost           float64
	Flat                 bool
	Inconsistencies      int
	Duration             time.Duration
	Time                 time.Time
}

// MetricsSink records settlement outcomes for observability purposes.
type MetricsSink interface {
	RecordSettlement(rec SettlementRecord) error
}

// ChargeRecord is the settlement of a single broker.
type ChargeRecord struct {
	RunID          string
	Timeslot       int
	BrokerID       string
	NetLoadKWh     float64
	P1             float64
	P2             float64
	CurtailmentKWh float64
	Time           time.Time
}

// ChargeRecorder records per-broker charges.
type ChargeRecorder interface {
	RecordCharges(recs []ChargeRecord) error
}

// TransactionRecord is a balancing transaction posted to the ledger.
type TransactionRecord struct {
	Timeslot int
	BrokerID string
	Charge   float64
	Accepted bool
	Time     time.Time
}

// TransactionRecorder records ledger postings.
type TransactionRecorder interface {
	RecordTransaction(rec TransactionRecord) error
}

// ReportRecord is the publication of a balance report.
type ReportRecord struct {
	Timeslot        int
	NetImbalanceKWh float64
	Published       bool
	Latency         time.Duration
	Time            time.Time
}

// ReportRecorder records balance report publication.
type ReportRecorder interface {
	RecordReport(rec ReportRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSettlement(SettlementRecord) error   { return nil }
func (NopSink) RecordCharges([]ChargeRecord) error        { return nil }
func (NopSink) RecordTransaction(TransactionRecord) error { return nil }
func (NopSink) RecordReport(ReportRecord) error           { return nil }
