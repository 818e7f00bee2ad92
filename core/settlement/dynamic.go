package settlement

import "github.com/kilianp07/balancemkt/core/logger"

// DynamicEngine is the placeholder for multi-timeslot settlement.
type DynamicEngine struct {
	logger logger.Logger
}

func NewDynamicEngine(log logger.Logger) *DynamicEngine {
	return &DynamicEngine{logger: logger.OrNop(log)}
}

// Settle leaves the charges untouched.
func (d *DynamicEngine) Settle(PriceContext, []*ChargeInfo) error {
	d.logger.Warnf("dynamic settlement requested")
	return ErrNotImplemented
}
