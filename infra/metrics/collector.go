package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/balancemkt/core/events"
	coremetrics "github.com/kilianp07/balancemkt/core/metrics"
	"github.com/kilianp07/balancemkt/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records ledger
// postings and report broadcasts on sinks implementing the matching
// recorder. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.TransactionEvent:
		if r, ok := sink.(coremetrics.TransactionRecorder); ok {
			_ = r.RecordTransaction(coremetrics.TransactionRecord{
				Timeslot: e.Timeslot,
				BrokerID: e.BrokerID,
				Charge:   e.Charge,
				Accepted: e.Err == nil,
				Time:     time.Now(),
			})
		}
	case events.ReportEvent:
		if r, ok := sink.(coremetrics.ReportRecorder); ok {
			_ = r.RecordReport(coremetrics.ReportRecord{
				Timeslot:        e.Report.Timeslot,
				NetImbalanceKWh: e.Report.NetImbalanceKWh,
				Published:       e.Err == nil,
				Latency:         e.Latency,
				Time:            time.Now(),
			})
		}
	}
}
