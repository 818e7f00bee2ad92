// Package scheduler implements the timeslot clock of the balancing market.
// It runs the registered tasks once per timeslot in order, typically the
// simulated wholesale and retail activity followed by the settlement.
package scheduler
