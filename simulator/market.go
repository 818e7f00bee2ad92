package simulator

import (
	"fmt"
	"sync"

	"github.com/kilianp07/balancemkt/core/model"
)

// Registry lists the simulated retail brokers.
type Registry struct {
	brokers []model.Broker
}

// NewRegistry creates n brokers named broker1..brokerN.
func NewRegistry(n int) *Registry {
	bs := make([]model.Broker, n)
	for i := range bs {
		id := fmt.Sprintf("broker%d", i+1)
		bs[i] = model.Broker{ID: id, Username: id}
	}
	return &Registry{brokers: bs}
}

func (r *Registry) RetailBrokers() ([]model.Broker, error) {
	return append([]model.Broker(nil), r.brokers...), nil
}

// OrderBook holds wholesale clearing prices per timeslot. It implements
// balancing.PriceOracle.
type OrderBook struct {
	mu       sync.RWMutex
	clearing map[int][]float64
	spot     map[int]float64
}

func NewOrderBook() *OrderBook {
	return &OrderBook{clearing: make(map[int][]float64), spot: make(map[int]float64)}
}

// Clear records the clearing prices and spot price of a timeslot.
func (b *OrderBook) Clear(timeslot int, prices []float64, spot float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearing[timeslot] = append([]float64(nil), prices...)
	b.spot[timeslot] = spot
}

func (b *OrderBook) ClearingPrices(timeslot int) []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]float64(nil), b.clearing[timeslot]...)
}

func (b *OrderBook) SpotClearingPrice(timeslot int) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.spot[timeslot]
	return p, ok
}

// OrderBoard collects the balancing orders of the current timeslot. It
// keeps at most one order per tariff and direction and implements
// balancing.OrderSource.
type OrderBoard struct {
	mu     sync.RWMutex
	orders []model.BalancingOrder
	index  map[orderKey]int
}

type orderKey struct {
	tariffID  string
	direction model.Direction
}

// Submit adds a validated order. An order for a tariff and direction that
// already has one replaces it in place.
func (o *OrderBoard) Submit(order model.BalancingOrder) error {
	if err := order.Validate(); err != nil {
		return err
	}
	key := orderKey{tariffID: order.TariffID, direction: order.Direction()}
	o.mu.Lock()
	defer o.mu.Unlock()
	if i, ok := o.index[key]; ok {
		o.orders[i] = order
		return nil
	}
	if o.index == nil {
		o.index = make(map[orderKey]int)
	}
	o.index[key] = len(o.orders)
	o.orders = append(o.orders, order)
	return nil
}

// Reset drops all orders.
func (o *OrderBoard) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders = nil
	o.index = nil
}

func (o *OrderBoard) BalancingOrders() []model.BalancingOrder {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]model.BalancingOrder(nil), o.orders...)
}

// Exercise is one call of the market into a tariff's controllable capacity.
type Exercise struct {
	OrderID  string  `json:"order_id"`
	BrokerID string  `json:"broker_id"`
	KWh      float64 `json:"kwh"`
	Payment  float64 `json:"payment"`
}

// CapacityControl stands in for the customers behind each tariff. It
// implements settlement.CapacityControl.
type CapacityControl struct {
	mu        sync.Mutex
	offered   map[string]model.RegulationCapacity
	exercised []Exercise
}

func NewCapacityControl() *CapacityControl {
	return &CapacityControl{offered: make(map[string]model.RegulationCapacity)}
}

// Offer sets the capacity available behind an order.
func (c *CapacityControl) Offer(orderID string, capacity model.RegulationCapacity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offered[orderID] = capacity
}

// Reset drops all offered capacity.
func (c *CapacityControl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.offered)
}

func (c *CapacityControl) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offered[o.ID]
}

// ExerciseBalancingControl records the exercise and consumes the capacity.
func (c *CapacityControl) ExerciseBalancingControl(o model.BalancingOrder, kwh, payment float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exercised = append(c.exercised, Exercise{OrderID: o.ID, BrokerID: o.BrokerID, KWh: kwh, Payment: payment})
	capacity := c.offered[o.ID]
	if kwh > 0 {
		capacity = model.NewRegulationCapacity(capacity.UpKWh-kwh, capacity.DownKWh)
	} else {
		capacity = model.NewRegulationCapacity(capacity.UpKWh, capacity.DownKWh-kwh)
	}
	c.offered[o.ID] = capacity
}

// Exercised returns a copy of all exercises.
func (c *CapacityControl) Exercised() []Exercise {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Exercise(nil), c.exercised...)
}
