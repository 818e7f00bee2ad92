package settlement

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/balancemkt/core/logger"
	"github.com/kilianp07/balancemkt/core/monitoring"
)

// Result summarises one static settlement pass.
type Result struct {
	TotalImbalanceKWh float64
	// Flat is set when the imbalance cancelled out and the auction was skipped.
	Flat bool
	// Curve is the cleared merit order, regulating-market segments included.
	Curve                []Candidate
	ExercisedKWh         float64
	RegulatingMarketKWh  float64
	RegulatingMarketCost float64
	// BrokerCost is the sum of all charges. Positive means net credit to
	// the brokers.
	BrokerCost      float64
	Inconsistencies []error
}

// Budget returns the amount by which the brokers' charges fail to cover
// the regulating market. It is zero when no broker order is exercised.
func (r Result) Budget() float64 { return r.BrokerCost + r.RegulatingMarketCost }

// StaticEngine settles a single timeslot with the VCG merit-order auction.
// It keeps no state between passes.
type StaticEngine struct {
	control CapacityControl
	logger  logger.Logger
}

func NewStaticEngine(control CapacityControl, log logger.Logger) *StaticEngine {
	return &StaticEngine{control: control, logger: logger.OrNop(log)}
}

// Settle implements Strategy.
func (e *StaticEngine) Settle(pc PriceContext, charges []*ChargeInfo) error {
	_, err := e.Run(pc, charges)
	return err
}

// Run performs the settlement and returns its diagnostics. Model
// inconsistencies are reported in the result and never fail the pass.
func (e *StaticEngine) Run(pc PriceContext, charges []*ChargeInfo) (Result, error) {
	for _, ci := range charges {
		if ci == nil {
			return Result{}, fmt.Errorf("%w: nil charge info", ErrData)
		}
	}
	start := time.Now()
	p := &pass{pc: pc, charges: charges, control: e.control, log: e.logger}
	var gross float64
	for _, ci := range charges {
		p.total += ci.NetLoadKWh
		gross += math.Abs(ci.NetLoadKWh)
	}
	p.sgn = signum(p.total)
	res := Result{TotalImbalanceKWh: p.total}

	mode := "auction"
	switch {
	case math.Abs(p.total) < epsilon && gross < epsilon:
		mode = "idle"
		e.logger.Debugf("no imbalance to settle")
	case math.Abs(p.total) < epsilon:
		mode = "flat"
		res.Flat = true
		p.flatCharges()
	default:
		if e.control == nil {
			return Result{}, fmt.Errorf("%w: no capacity control", ErrData)
		}
		c := p.discover()
		candidateOrders.Set(float64(len(c)))
		c = p.addMarket(c)
		exercise(c, p.total)
		p.externalityCharges(c)
		p.imbalanceCharges(c)
		p.exerciseControls(c)

		res.Curve = c
		res.ExercisedKWh = c.exercised()
		res.RegulatingMarketKWh = c.marketExercised()
		res.RegulatingMarketCost = p.sgn * c.marketCost()
	}
	for _, ci := range charges {
		res.BrokerCost += ci.BalanceCharge()
	}
	res.Inconsistencies = p.issues

	settlementRuns.WithLabelValues(mode).Inc()
	settlementDuration.Observe(time.Since(start).Seconds())
	regulatingMarketCost.Set(res.RegulatingMarketCost)
	e.logger.Infof("settled %d brokers: imbalance %.3f kWh, regulating market %.3f kWh at %.4f, brokers %.4f",
		len(charges), res.TotalImbalanceKWh, res.RegulatingMarketKWh, res.RegulatingMarketCost, res.BrokerCost)
	return res, nil
}

// pass holds the working state of one Run.
type pass struct {
	pc      PriceContext
	charges []*ChargeInfo
	control CapacityControl
	log     logger.Logger
	total   float64
	sgn     float64
	seq     int
	issues  []error
}

func (p *pass) nextSeq() int {
	p.seq++
	return p.seq
}

func (p *pass) inconsistency(err error) {
	p.issues = append(p.issues, err)
	modelInconsistencies.Inc()
	p.log.Errorf("%v", err)
	monitoring.CaptureException(err, map[string]string{"module": "settlement"})
}
