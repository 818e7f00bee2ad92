package model

import "fmt"

// Direction tells which way a balancing order moves the system balance.
type Direction int

const (
	// DirectionNone is reported for a zero exercise ratio.
	DirectionNone Direction = iota
	// DirectionUp reduces consumption or discharges storage.
	DirectionUp
	// DirectionDown increases consumption or curtails production.
	DirectionDown
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// BalancingOrder is a broker's standing offer to let the market operator
// exercise the controllable capacity of one tariff.
//
// ExerciseRatio is signed: (0,1] is up-regulation by curtailment, (1,2] adds
// storage discharge and [-1,0) is down-regulation.
type BalancingOrder struct {
	ID            string  `json:"id" yaml:"id"`
	BrokerID      string  `json:"broker_id" yaml:"broker_id"`
	TariffID      string  `json:"tariff_id" yaml:"tariff_id"`
	ExerciseRatio float64 `json:"exercise_ratio" yaml:"exercise_ratio"`
	Price         float64 `json:"price" yaml:"price"` // money per kWh
}

// Direction derives the regulation direction from the exercise ratio sign.
func (o BalancingOrder) Direction() Direction {
	switch {
	case o.ExerciseRatio > 0:
		return DirectionUp
	case o.ExerciseRatio < 0:
		return DirectionDown
	default:
		return DirectionNone
	}
}

// Validate checks that the order can take part in a settlement.
func (o BalancingOrder) Validate() error {
	if o.BrokerID == "" {
		return fmt.Errorf("order %s: broker is required", o.ID)
	}
	if o.ExerciseRatio < -1 || o.ExerciseRatio > 2 {
		return fmt.Errorf("order %s: exercise ratio %g outside [-1,2]", o.ID, o.ExerciseRatio)
	}
	if o.ExerciseRatio == 0 {
		return fmt.Errorf("order %s: exercise ratio must not be zero", o.ID)
	}
	return nil
}
