package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	settlementapi "github.com/kilianp07/balancemkt/api/settlement"
	"github.com/kilianp07/balancemkt/app/plugins"
	"github.com/kilianp07/balancemkt/config"
	"github.com/kilianp07/balancemkt/core/balancing"
	"github.com/kilianp07/balancemkt/core/balancing/logging"
	coremetrics "github.com/kilianp07/balancemkt/core/metrics"
	coremon "github.com/kilianp07/balancemkt/core/monitoring"
	"github.com/kilianp07/balancemkt/core/scheduler"
	"github.com/kilianp07/balancemkt/infra/logger"
	"github.com/kilianp07/balancemkt/infra/metrics"
	"github.com/kilianp07/balancemkt/infra/monitoring"
	"github.com/kilianp07/balancemkt/infra/mqtt"
	"github.com/kilianp07/balancemkt/infra/wholesale"
	"github.com/kilianp07/balancemkt/internal/eventbus"
	"github.com/kilianp07/balancemkt/simulator"
)

// Service runs the simulated retail market and settles its balancing
// market once per timeslot.
type Service struct {
	Market    *balancing.Market
	Game      *simulator.Game
	Scheduler *scheduler.Scheduler

	sink     coremetrics.MetricsSink
	store    logging.LogStore
	reporter *mqtt.PahoReporter
	bus      *eventbus.Bus
	log      logger.Logger
	promAddr string
	apiToken string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := plugins.NewLogStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("settlement log: %w", err)
	}
	game, err := simulator.NewGame(cfg.Simulation, logger.New("simulator"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svc := &Service{
		Game:     game,
		sink:     sink,
		store:    store,
		bus:      eventbus.New(),
		log:      logg,
		promAddr: cfg.Metrics.PrometheusAddr,
		apiToken: cfg.Logging.APIToken,
	}
	deps := game.Dependencies()
	deps.Sink = sink
	deps.Store = store
	deps.Bus = svc.bus

	tasks := []scheduler.Task{game}
	if cfg.Wholesale.BaseURL != "" {
		oracle, err := wholesale.NewOracle(cfg.Wholesale, logger.New("wholesale"))
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("wholesale oracle: %w", err)
		}
		deps.Oracle = oracle
		tasks = append(tasks, oracle)
	}
	if cfg.MQTT.Broker != "" {
		reporter, err := mqtt.NewPahoReporter(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt reporter: %w", err)
		}
		svc.reporter = reporter
		deps.Reports = reporter
	}

	market, err := balancing.NewMarket(cfg.Balancing, deps, logger.New("balancing"))
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	svc.Market = market
	tasks = append(tasks, scheduler.TaskFunc(svc.settle))

	sched, err := scheduler.New(cfg.Scheduler, logger.New("scheduler"), tasks...)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	svc.Scheduler = sched
	return svc, nil
}

func (s *Service) settle(ctx context.Context, timeslot int) error {
	_, err := s.Market.SettleTimeslot(ctx, timeslot)
	return err
}

// Run starts the timeslot loop and blocks until the context is cancelled or
// the configured number of timeslots has been settled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promAddr != "" {
		go func() {
			routes := map[string]http.Handler{settlementapi.LogsPath: settlementapi.NewLogHandler(s.store, s.apiToken)}
			if err := metrics.StartPromServer(ctx, s.promAddr, prometheus.DefaultGatherer, routes); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("settling with %s strategy", s.Market.Kind())
	return s.Scheduler.Run(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.reporter != nil {
		s.reporter.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	return errors.Join(s.store.Close())
}
