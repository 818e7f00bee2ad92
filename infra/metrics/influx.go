package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/balancemkt/core/metrics"
	"github.com/kilianp07/balancemkt/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes settlement points to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordSettlement writes one settlement_run point.
func (s *InfluxSink) RecordSettlement(rec coremetrics.SettlementRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("settlement_run").
		AddTag("run_id", rec.RunID).
		AddTag("strategy", rec.Strategy).
		AddTag("flat", strconv.FormatBool(rec.Flat)).
		AddField("timeslot", rec.Timeslot).
		AddField("imbalance_kwh", round3(rec.TotalImbalanceKWh)).
		AddField("rm_kwh", round3(rec.RegulatingMarketKWh)).
		AddField("rm_cost", round3(rec.RegulatingMarketCost)).
		AddField("broker_cost", round3(rec.BrokerCost)).
		AddField("inconsistencies", rec.Inconsistencies).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCharges writes one broker_charge point per broker.
func (s *InfluxSink) RecordCharges(recs []coremetrics.ChargeRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(recs))
	for _, r := range recs {
		points = append(points, write.NewPointWithMeasurement("broker_charge").
			AddTag("run_id", r.RunID).
			AddTag("broker_id", r.BrokerID).
			AddField("timeslot", r.Timeslot).
			AddField("net_load_kwh", round3(r.NetLoadKWh)).
			AddField("p1", round3(r.P1)).
			AddField("p2", round3(r.P2)).
			AddField("curtailment_kwh", round3(r.CurtailmentKWh)).
			SetTime(r.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordTransaction writes a ledger posting.
func (s *InfluxSink) RecordTransaction(rec coremetrics.TransactionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("balancing_transaction").
		AddTag("broker_id", rec.BrokerID).
		AddTag("accepted", strconv.FormatBool(rec.Accepted)).
		AddField("timeslot", rec.Timeslot).
		AddField("charge", round3(rec.Charge)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordReport writes a balance report publication.
func (s *InfluxSink) RecordReport(rec coremetrics.ReportRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("balance_report").
		AddTag("published", strconv.FormatBool(rec.Published)).
		AddField("timeslot", rec.Timeslot).
		AddField("net_imbalance_kwh", round3(rec.NetImbalanceKWh)).
		AddField("latency_ms", round3(rec.Latency.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
