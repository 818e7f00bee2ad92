// Package balancing drives the settlement of one timeslot. Market collects
// net loads and balancing orders from the broker-facing collaborators, runs
// the configured settlement strategy, posts the resulting charges to the
// ledger and broadcasts the balance report.
package balancing
