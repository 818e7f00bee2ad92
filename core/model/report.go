package model

// BalanceReport is broadcast to all brokers after each settlement.
type BalanceReport struct {
	Timeslot        int     `json:"timeslot"`
	NetImbalanceKWh float64 `json:"net_imbalance_kwh"`
}
