package balancing

import (
	"sync"

	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/settlement"
)

// capacityRecorder remembers the capacities reported during a pass so that
// the settlement log can replay it.
type capacityRecorder struct {
	inner settlement.CapacityControl
	mu    sync.Mutex
	seen  map[string]model.RegulationCapacity
}

func (c *capacityRecorder) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	rc := c.inner.RegulationCapacity(o)
	c.mu.Lock()
	c.seen[o.ID] = rc
	c.mu.Unlock()
	return rc
}

func (c *capacityRecorder) ExerciseBalancingControl(o model.BalancingOrder, kwh, payment float64) {
	c.inner.ExerciseBalancingControl(o, kwh, payment)
}

func (c *capacityRecorder) reset() {
	c.mu.Lock()
	c.seen = make(map[string]model.RegulationCapacity)
	c.mu.Unlock()
}

func (c *capacityRecorder) snapshot() map[string]model.RegulationCapacity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]model.RegulationCapacity, len(c.seen))
	for k, v := range c.seen {
		out[k] = v
	}
	return out
}
