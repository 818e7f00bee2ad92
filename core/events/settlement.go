package events

import "time"

// SettlementEvent is published once per settled timeslot.
type SettlementEvent struct {
	RunID                string
	Timeslot             int
	Strategy             string
	TotalImbalanceKWh    float64
	RegulatingMarketCost float64
	BrokerCost           float64
	Flat                 bool
	Inconsistencies      int
	Duration             time.Duration
}

// TransactionEvent is published for each balancing charge posted to the
// ledger. Err is set when the ledger rejected it.
type TransactionEvent struct {
	Timeslot   int
	BrokerID   string
	NetLoadKWh float64
	Charge     float64
	Err        error
}
