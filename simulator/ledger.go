package simulator

import (
	"fmt"
	"sync"
)

// Transaction is a balancing charge posted to a broker account.
type Transaction struct {
	Timeslot   int     `json:"timeslot"`
	BrokerID   string  `json:"broker_id"`
	NetLoadKWh float64 `json:"net_load_kwh"`
	Charge     float64 `json:"charge"`
}

// Ledger keeps the wholesale position and metered load of every broker for
// the current timeslot, plus the cash effect of balancing transactions.
type Ledger struct {
	mu        sync.RWMutex
	timeslot  int
	positions map[string]float64
	netLoads  map[string]float64
	cash      map[string]float64
	txs       []Transaction
	rejected  map[string]bool
}

func NewLedger() *Ledger {
	return &Ledger{
		positions: make(map[string]float64),
		netLoads:  make(map[string]float64),
		cash:      make(map[string]float64),
		rejected:  make(map[string]bool),
	}
}

// Open starts a timeslot and clears positions and loads.
func (l *Ledger) Open(timeslot int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeslot = timeslot
	clear(l.positions)
	clear(l.netLoads)
}

// SetPosition records the wholesale position in MWh.
func (l *Ledger) SetPosition(brokerID string, mwh float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.positions[brokerID] = mwh
}

// SetNetLoad records the metered net load in kWh.
func (l *Ledger) SetNetLoad(brokerID string, kwh float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.netLoads[brokerID] = kwh
}

// Reject makes postings for brokerID fail, to simulate a closed account.
func (l *Ledger) Reject(brokerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected[brokerID] = true
}

func (l *Ledger) CurrentMarketPosition(brokerID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.positions[brokerID]
}

func (l *Ledger) CurrentNetLoad(brokerID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.netLoads[brokerID]
}

// AddBalancingTransaction debits the charge from the broker's cash.
func (l *Ledger) AddBalancingTransaction(brokerID string, netLoadKWh, charge float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rejected[brokerID] {
		return fmt.Errorf("account %s rejected transaction", brokerID)
	}
	l.cash[brokerID] -= charge
	l.txs = append(l.txs, Transaction{Timeslot: l.timeslot, BrokerID: brokerID, NetLoadKWh: netLoadKWh, Charge: charge})
	return nil
}

// Cash returns the accumulated balancing cash of a broker.
func (l *Ledger) Cash(brokerID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash[brokerID]
}

// Transactions returns a copy of all postings.
func (l *Ledger) Transactions() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Transaction(nil), l.txs...)
}
