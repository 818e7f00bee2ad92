// Package infra contains the adapters the balancing market talks to: the
// MQTT report publisher, Prometheus and InfluxDB sinks, Sentry, the
// wholesale price client and the zerolog logger. These packages depend
// only on the interfaces defined in core.
package infra
