package settlement

import (
	"fmt"
	"strings"

	"github.com/kilianp07/balancemkt/core/logger"
	"github.com/kilianp07/balancemkt/core/model"
)

// PriceContext carries the regulating-market prices for one settlement.
// PPlus is the up-regulation price, PMinus the down-regulation price and
// the primes are their slopes per kWh.
type PriceContext struct {
	PPlus       float64 `json:"p_plus"`
	PMinus      float64 `json:"p_minus"`
	PPlusPrime  float64 `json:"p_plus_prime"`
	PMinusPrime float64 `json:"p_minus_prime"`
}

// CapacityControl reports the regulation capacity behind a balancing order
// and performs the physical exercise once prices are known.
type CapacityControl interface {
	RegulationCapacity(order model.BalancingOrder) model.RegulationCapacity
	ExerciseBalancingControl(order model.BalancingOrder, kwh, payment float64)
}

// Strategy settles one timeslot by writing P1, P2 and curtailment into the
// given charges.
type Strategy interface {
	Settle(pc PriceContext, charges []*ChargeInfo) error
}

// Kind enumerates the available settlement strategies.
type Kind int

const (
	KindStatic Kind = iota
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a configured process name to a Kind. An empty name selects
// the static engine.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "static":
		return KindStatic, nil
	case "dynamic":
		return KindDynamic, nil
	default:
		return KindStatic, fmt.Errorf("unknown settlement process %q: %w", name, ErrConfiguration)
	}
}

// NewStrategy builds the engine for kind.
func NewStrategy(kind Kind, control CapacityControl, log logger.Logger) (Strategy, error) {
	switch kind {
	case KindStatic:
		return NewStaticEngine(control, log), nil
	case KindDynamic:
		return NewDynamicEngine(log), nil
	default:
		return nil, fmt.Errorf("settlement kind %s: %w", kind, ErrConfiguration)
	}
}

// Runner is implemented by strategies that expose settlement diagnostics.
type Runner interface {
	Run(pc PriceContext, charges []*ChargeInfo) (Result, error)
}
