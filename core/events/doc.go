// Package events defines the settlement related events emitted on the event bus.
//
// Available event types:
//   - SettlementEvent: a timeslot was settled
//   - TransactionEvent: a balancing charge was posted to the ledger
//   - ReportEvent: the balance report was broadcast
package events
