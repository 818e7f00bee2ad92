package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/settlement"
)

// OrderDef is a balancing order together with the capacity behind it.
type OrderDef struct {
	ID            string  `yaml:"id"`
	ExerciseRatio float64 `yaml:"exercise_ratio"`
	Price         float64 `yaml:"price"`
	UpKWh         float64 `yaml:"up_kwh"`
	DownKWh       float64 `yaml:"down_kwh"`
}

// ToModel returns the order of brokerID.
func (o OrderDef) ToModel(brokerID string) model.BalancingOrder {
	return model.BalancingOrder{
		ID:            o.ID,
		BrokerID:      brokerID,
		TariffID:      brokerID + "-" + o.ID,
		ExerciseRatio: o.ExerciseRatio,
		Price:         o.Price,
	}
}

type BrokerDef struct {
	ID         string     `yaml:"id"`
	NetLoadKWh float64    `yaml:"net_load_kwh"`
	Orders     []OrderDef `yaml:"orders,omitempty"`
}

type PriceDef struct {
	PPlus       float64 `yaml:"p_plus"`
	PMinus      float64 `yaml:"p_minus"`
	PPlusPrime  float64 `yaml:"p_plus_prime"`
	PMinusPrime float64 `yaml:"p_minus_prime"`
}

func (p PriceDef) ToModel() settlement.PriceContext {
	return settlement.PriceContext{PPlus: p.PPlus, PMinus: p.PMinus, PPlusPrime: p.PPlusPrime, PMinusPrime: p.PMinusPrime}
}

// ExpectedCharge is the settlement a broker must end up with.
type ExpectedCharge struct {
	P1             float64 `yaml:"p1"`
	P2             float64 `yaml:"p2"`
	CurtailmentKWh float64 `yaml:"curtailment_kwh"`
}

type Expected struct {
	Flat    bool                      `yaml:"flat"`
	RMCost  *float64                  `yaml:"rm_cost,omitempty"`
	Charges map[string]ExpectedCharge `yaml:"charges"`
	// Tolerance defaults to 1e-6.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Strategy    string      `yaml:"strategy,omitempty"`
	Timeslot    int         `yaml:"timeslot,omitempty"`
	Prices      PriceDef    `yaml:"prices"`
	Brokers     []BrokerDef `yaml:"brokers"`
	Expected    *Expected   `yaml:"expected,omitempty"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(sc.Brokers) == 0 {
		return nil, fmt.Errorf("scenario %s: no broker", path)
	}
	return &sc, nil
}
