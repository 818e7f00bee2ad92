package simulator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/balancemkt/core/balancing"
	"github.com/kilianp07/balancemkt/core/model"
)

func TestGameDeterministic(t *testing.T) {
	cfg := Config{Brokers: 4, Seed: 42, OrderProbability: 1}
	a, err := NewGame(cfg, nil)
	require.NoError(t, err)
	b, err := NewGame(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.RunTimeslot(ctx, 1))
	require.NoError(t, b.RunTimeslot(ctx, 1))

	brokers, err := a.Brokers.RetailBrokers()
	require.NoError(t, err)
	require.Len(t, brokers, 4)
	for _, br := range brokers {
		assert.Equal(t, a.Ledger.CurrentNetLoad(br.ID), b.Ledger.CurrentNetLoad(br.ID))
		assert.Equal(t, a.Ledger.CurrentMarketPosition(br.ID), b.Ledger.CurrentMarketPosition(br.ID))
	}
	assert.Equal(t, a.Orders.BalancingOrders(), b.Orders.BalancingOrders())
	assert.Equal(t, a.Book.ClearingPrices(1), b.Book.ClearingPrices(1))
}

func TestGameTimeslotContents(t *testing.T) {
	g, err := NewGame(Config{Brokers: 3, Seed: 7, OrderProbability: 1, DownShare: 0.5, ClearingTrades: 5}, nil)
	require.NoError(t, err)
	require.NoError(t, g.RunTimeslot(context.Background(), 9))

	orders := g.Orders.BalancingOrders()
	require.Len(t, orders, 3)
	for _, o := range orders {
		require.NoError(t, o.Validate())
		assert.GreaterOrEqual(t, o.Price, 0.02)
		assert.LessOrEqual(t, o.Price, 0.08)
		capacity := g.Control.RegulationCapacity(o)
		if o.Direction() == model.DirectionUp {
			assert.Zero(t, capacity.DownKWh)
		} else {
			assert.Zero(t, capacity.UpKWh)
		}
	}

	prices := g.Book.ClearingPrices(9)
	assert.Len(t, prices, 5)
	for _, p := range prices {
		assert.GreaterOrEqual(t, p, 0.0)
	}
	_, ok := g.Book.SpotClearingPrice(9)
	assert.True(t, ok)
	_, ok = g.Book.SpotClearingPrice(10)
	assert.False(t, ok)
}

func TestGameNoOrders(t *testing.T) {
	g, err := NewGame(Config{Brokers: 2, OrderProbability: 0}, nil)
	require.NoError(t, err)
	// SetDefaults replaces a zero probability
	g.cfg.OrderProbability = 0
	require.NoError(t, g.RunTimeslot(context.Background(), 1))
	assert.Empty(t, g.Orders.BalancingOrders())
}

func TestGameDrivesMarket(t *testing.T) {
	g, err := NewGame(Config{Brokers: 5, Seed: 3, OrderProbability: 1}, nil)
	require.NoError(t, err)
	m, err := balancing.NewMarket(balancing.DefaultConfig(), g.Dependencies(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	for ts := 1; ts <= 3; ts++ {
		require.NoError(t, g.RunTimeslot(ctx, ts))
		charges, err := m.SettleTimeslot(ctx, ts)
		require.NoError(t, err)
		assert.Len(t, charges, 5)
	}
	txs := g.Ledger.Transactions()
	require.NotEmpty(t, txs)
	assert.LessOrEqual(t, len(txs), 15)
	assert.Equal(t, 3, txs[len(txs)-1].Timeslot)
}

func TestLedger(t *testing.T) {
	l := NewLedger()
	l.Open(2)
	l.SetPosition("b1", 0.1)
	l.SetNetLoad("b1", -120)
	assert.Equal(t, 0.1, l.CurrentMarketPosition("b1"))
	assert.Equal(t, -120.0, l.CurrentNetLoad("b1"))

	require.NoError(t, l.AddBalancingTransaction("b1", -20, 1.5))
	assert.Equal(t, -1.5, l.Cash("b1"))
	l.Reject("b2")
	assert.Error(t, l.AddBalancingTransaction("b2", 3, 0.1))
	assert.Equal(t, []Transaction{{Timeslot: 2, BrokerID: "b1", NetLoadKWh: -20, Charge: 1.5}}, l.Transactions())

	l.Open(3)
	assert.Zero(t, l.CurrentNetLoad("b1"))
	assert.Equal(t, -1.5, l.Cash("b1"))
}

func TestCapacityControlConsumesCapacity(t *testing.T) {
	c := NewCapacityControl()
	up := model.BalancingOrder{ID: "o1", BrokerID: "b1", ExerciseRatio: 1}
	down := model.BalancingOrder{ID: "o2", BrokerID: "b1", ExerciseRatio: -1}
	c.Offer("o1", model.NewRegulationCapacity(10, 0))
	c.Offer("o2", model.NewRegulationCapacity(0, -8))

	c.ExerciseBalancingControl(up, 4, 0.2)
	c.ExerciseBalancingControl(down, -8, -0.1)
	assert.Equal(t, 6.0, c.RegulationCapacity(up).UpKWh)
	assert.Zero(t, c.RegulationCapacity(down).DownKWh)
	assert.Len(t, c.Exercised(), 2)

	c.Reset()
	assert.Zero(t, c.RegulationCapacity(up).UpKWh)
}

type failingRegistry struct{ err error }

func (r failingRegistry) RetailBrokers() ([]model.Broker, error) { return nil, r.err }

func TestGameRegistryFailure(t *testing.T) {
	g, err := NewGame(Config{Brokers: 2, Seed: 1}, nil)
	require.NoError(t, err)
	down := errors.New("registry down")
	g.Brokers = failingRegistry{err: down}

	err = g.RunTimeslot(context.Background(), 5)
	require.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "timeslot 5")
	assert.Empty(t, g.Orders.BalancingOrders())
	_, ok := g.Book.SpotClearingPrice(5)
	assert.False(t, ok)
}

func TestOrderBoardReplacesPerTariffAndDirection(t *testing.T) {
	tests := []struct {
		name   string
		orders []model.BalancingOrder
		want   []string
	}{
		{
			name: "same tariff up twice",
			orders: []model.BalancingOrder{
				{ID: "o1", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.5},
				{ID: "o2", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.8},
			},
			want: []string{"o2"},
		},
		{
			name: "up and down kept apart",
			orders: []model.BalancingOrder{
				{ID: "o1", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.5},
				{ID: "o2", BrokerID: "b1", TariffID: "t1", ExerciseRatio: -0.5},
			},
			want: []string{"o1", "o2"},
		},
		{
			name: "replacement keeps position",
			orders: []model.BalancingOrder{
				{ID: "o1", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.5},
				{ID: "o2", BrokerID: "b2", TariffID: "t2", ExerciseRatio: 0.5},
				{ID: "o3", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 1.2},
			},
			want: []string{"o3", "o2"},
		},
		{
			name: "different tariffs",
			orders: []model.BalancingOrder{
				{ID: "o1", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.5},
				{ID: "o2", BrokerID: "b1", TariffID: "t2", ExerciseRatio: 0.5},
			},
			want: []string{"o1", "o2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b OrderBoard
			for _, o := range tt.orders {
				require.NoError(t, b.Submit(o))
			}
			var got []string
			for _, o := range b.BalancingOrders() {
				got = append(got, o.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderBoardResetForgetsKeys(t *testing.T) {
	var b OrderBoard
	require.NoError(t, b.Submit(model.BalancingOrder{ID: "o1", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.5}))
	b.Reset()
	require.NoError(t, b.Submit(model.BalancingOrder{ID: "o2", BrokerID: "b1", TariffID: "t1", ExerciseRatio: 0.5}))
	orders := b.BalancingOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "o2", orders[0].ID)
}

func TestOrderBoardRejectsInvalid(t *testing.T) {
	var b OrderBoard
	assert.Error(t, b.Submit(model.BalancingOrder{ID: "x", BrokerID: "b1", ExerciseRatio: 3}))
	require.NoError(t, b.Submit(model.BalancingOrder{ID: "y", BrokerID: "b1", ExerciseRatio: 0.5}))
	assert.Len(t, b.BalancingOrders(), 1)
	b.Reset()
	assert.Empty(t, b.BalancingOrders())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brokers: 6\nseed: 11\ndown_share: 0.25\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Brokers)
	assert.Equal(t, int64(11), cfg.Seed)
	assert.Equal(t, 0.25, cfg.DownShare)
	assert.Equal(t, -200.0, cfg.NetLoadMeanKWh)

	require.NoError(t, os.WriteFile(path, []byte("down_share: 2\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
