package events

import (
	"time"

	"github.com/kilianp07/balancemkt/core/model"
)

// ReportEvent is published after the balance report was handed to the
// report channel.
type ReportEvent struct {
	Report  model.BalanceReport
	Err     error
	Latency time.Duration
}
