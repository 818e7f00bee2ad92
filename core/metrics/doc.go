// Package metrics defines the sinks that record settlement outcomes.
// Sinks like PromSink and InfluxSink live in infra/metrics and register
// themselves with the factory. NewMetricsSink returns a MultiSink when
// several sinks are configured. Optional recorder interfaces let a sink opt
// into per-broker charges, ledger transactions and report publication.
package metrics
