package model

import "math"

// regulationEpsilon is the magnitude below which capacities are treated as zero.
const regulationEpsilon = 1e-4

// RegulationCapacity accumulates the up- and down-regulation a tariff can
// provide. Up capacity is never negative and down capacity never positive.
type RegulationCapacity struct {
	UpKWh   float64 `json:"up_kwh" yaml:"up_kwh"`
	DownKWh float64 `json:"down_kwh" yaml:"down_kwh"`
}

// NewRegulationCapacity clamps wrong-signed values to zero.
func NewRegulationCapacity(up, down float64) RegulationCapacity {
	if up < 0 {
		up = 0
	}
	if down > 0 {
		down = 0
	}
	return RegulationCapacity{UpKWh: up, DownKWh: down}
}

// SetUp replaces the up-regulation capacity. It reports false and keeps the
// old value when the filtered value is negative.
func (r *RegulationCapacity) SetUp(v float64) bool {
	v = filterCapacity(v)
	if v < 0 {
		return false
	}
	r.UpKWh = v
	return true
}

// SetDown replaces the down-regulation capacity. It reports false and keeps
// the old value when the filtered value is positive.
func (r *RegulationCapacity) SetDown(v float64) bool {
	v = filterCapacity(v)
	if v > 0 {
		return false
	}
	r.DownKWh = v
	return true
}

// AddUp adds a non-negative amount of up-regulation.
func (r *RegulationCapacity) AddUp(amount float64) bool {
	if amount < 0 {
		return false
	}
	return r.SetUp(r.UpKWh + amount)
}

// AddDown adds a non-positive amount of down-regulation.
func (r *RegulationCapacity) AddDown(amount float64) bool {
	if amount > 0 {
		return false
	}
	return r.SetDown(r.DownKWh + amount)
}

// Add accumulates both sides of other.
func (r *RegulationCapacity) Add(other RegulationCapacity) {
	r.SetUp(r.UpKWh + other.UpKWh)
	r.SetDown(r.DownKWh + other.DownKWh)
}

// For returns the capacity on the side that resolves an imbalance with the
// given sign: up capacity for a deficit, down capacity otherwise.
func (r RegulationCapacity) For(imbalanceSign float64) float64 {
	if imbalanceSign < 0 {
		return r.UpKWh
	}
	return r.DownKWh
}

func filterCapacity(v float64) float64 {
	if math.Abs(v) < regulationEpsilon {
		return 0
	}
	return v
}
