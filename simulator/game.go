// Package simulator provides an in-memory retail market around the balancing
// market: broker accounts, wholesale clearing, balancing orders and the
// customers' controllable capacity. A Game samples a fresh timeslot before
// every settlement.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/balancemkt/core/balancing"
	"github.com/kilianp07/balancemkt/core/logger"
	"github.com/kilianp07/balancemkt/core/model"
)

// Game owns the simulated collaborators of the market.
type Game struct {
	cfg     Config
	log     logger.Logger
	Ledger  *Ledger
	Brokers balancing.BrokerRegistry
	Book    *OrderBook
	Orders  *OrderBoard
	Control *CapacityControl

	load     distuv.Normal
	forecast distuv.Normal
	price    distuv.Normal
	unit     distuv.Uniform
	orderPx  distuv.Uniform
}

func NewGame(cfg Config, log logger.Logger) (*Game, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	src := rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15)
	return &Game{
		cfg:      cfg,
		log:      logger.OrNop(log),
		Ledger:   NewLedger(),
		Brokers:  NewRegistry(cfg.Brokers),
		Book:     NewOrderBook(),
		Orders:   &OrderBoard{},
		Control:  NewCapacityControl(),
		load:     distuv.Normal{Mu: cfg.NetLoadMeanKWh, Sigma: cfg.NetLoadStdDevKWh, Src: src},
		forecast: distuv.Normal{Mu: 0, Sigma: cfg.ForecastErrorKWh, Src: src},
		price:    distuv.Normal{Mu: cfg.ClearingPriceMean, Sigma: cfg.ClearingPriceStdDev, Src: src},
		unit:     distuv.Uniform{Min: 0, Max: 1, Src: src},
		orderPx:  distuv.Uniform{Min: cfg.OrderPriceMin, Max: cfg.OrderPriceMax, Src: src},
	}, nil
}

// Dependencies wires the game into a balancing market. Reporting, metrics
// and logs are left to the caller.
func (g *Game) Dependencies() balancing.Dependencies {
	return balancing.Dependencies{
		Ledger:  g.Ledger,
		Brokers: g.Brokers,
		Orders:  g.Orders,
		Oracle:  g.Book,
		Control: g.Control,
	}
}

// RunTimeslot samples loads, positions, orders and wholesale prices for the
// timeslot about to be settled.
func (g *Game) RunTimeslot(_ context.Context, timeslot int) error {
	g.Ledger.Open(timeslot)
	g.Orders.Reset()
	g.Control.Reset()

	brokers, err := g.Brokers.RetailBrokers()
	if err != nil {
		return fmt.Errorf("timeslot %d: %w", timeslot, err)
	}
	var imbalance float64
	for _, b := range brokers {
		load := g.load.Rand()
		// The position covers the forecast load; the forecast error is
		// what the balancing market has to absorb.
		position := -(load + g.forecast.Rand()) / 1000
		g.Ledger.SetNetLoad(b.ID, load)
		g.Ledger.SetPosition(b.ID, position)
		imbalance += position*1000 + load

		if g.unit.Rand() >= g.cfg.OrderProbability {
			continue
		}
		if err := g.offer(b, timeslot); err != nil {
			return err
		}
	}

	prices := make([]float64, g.cfg.ClearingTrades)
	for i := range prices {
		prices[i] = math.Max(0, g.price.Rand())
	}
	spot := g.cfg.ClearingPriceMean
	if len(prices) > 0 {
		spot = stat.Mean(prices, nil)
	}
	g.Book.Clear(timeslot, prices, spot)
	g.log.Debugf("timeslot %d prepared: imbalance %.2f kWh, %d orders, spot %.2f",
		timeslot, imbalance, len(g.Orders.BalancingOrders()), spot)
	return nil
}

func (g *Game) offer(b model.Broker, timeslot int) error {
	down := g.unit.Rand() < g.cfg.DownShare
	capacity := g.unit.Rand() * g.cfg.CapacityMaxKWh
	ratio := 0.2 + 0.8*g.unit.Rand()
	reg := model.NewRegulationCapacity(capacity, 0)
	if down {
		ratio = -ratio
		reg = model.NewRegulationCapacity(0, -capacity)
	}
	order := model.BalancingOrder{
		ID:            fmt.Sprintf("%s-t%d", b.ID, timeslot),
		BrokerID:      b.ID,
		TariffID:      b.ID + "-tariff",
		ExerciseRatio: ratio,
		Price:         g.orderPx.Rand(),
	}
	if err := g.Orders.Submit(order); err != nil {
		return err
	}
	g.Control.Offer(order.ID, reg)
	return nil
}
