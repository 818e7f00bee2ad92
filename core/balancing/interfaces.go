package balancing

import (
	"context"

	"github.com/kilianp07/balancemkt/core/model"
)

// Ledger holds broker positions and receives balancing transactions.
type Ledger interface {
	// CurrentMarketPosition returns the broker's wholesale position in MWh.
	CurrentMarketPosition(brokerID string) float64
	// CurrentNetLoad returns the broker's metered net load in kWh.
	CurrentNetLoad(brokerID string) float64
	AddBalancingTransaction(brokerID string, netLoadKWh, charge float64) error
}

// BrokerRegistry lists the retail brokers to settle.
type BrokerRegistry interface {
	RetailBrokers() ([]model.Broker, error)
}

// OrderSource returns the balancing orders offered for the current timeslot.
type OrderSource interface {
	BalancingOrders() []model.BalancingOrder
}

// PriceOracle exposes wholesale clearing prices per MWh.
type PriceOracle interface {
	ClearingPrices(timeslot int) []float64
	SpotClearingPrice(timeslot int) (float64, bool)
}

// ReportChannel broadcasts the balance report to all brokers.
type ReportChannel interface {
	BroadcastReport(ctx context.Context, r model.BalanceReport) error
}
