// Package export writes settlement outcomes as JSON or CSV.
package export

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"io"
	"slices"
	"strconv"

	"github.com/kilianp07/balancemkt/core/settlement"
)

// Charge is the settlement of one broker in one timeslot.
type Charge struct {
	Timeslot       int     `json:"timeslot"`
	BrokerID       string  `json:"broker_id"`
	NetLoadKWh     float64 `json:"net_load_kwh"`
	P1             float64 `json:"p1"`
	P2             float64 `json:"p2"`
	CurtailmentKWh float64 `json:"curtailment_kwh"`
}

// Summary is a settled timeslot with its budget.
type Summary struct {
	Timeslot             int      `json:"timeslot"`
	Strategy             string   `json:"strategy"`
	TotalImbalanceKWh    float64  `json:"total_imbalance_kwh"`
	RegulatingMarketCost float64  `json:"rm_cost"`
	BrokerCost           float64  `json:"broker_cost"`
	Budget               float64  `json:"budget"`
	Flat                 bool     `json:"flat"`
	Inconsistencies      []string `json:"inconsistencies,omitempty"`
	Charges              []Charge `json:"charges"`
}

// Charges converts settled charges, ordered by broker id.
func Charges(timeslot int, cis []*settlement.ChargeInfo) []Charge {
	out := make([]Charge, 0, len(cis))
	for _, ci := range cis {
		out = append(out, Charge{
			Timeslot:       timeslot,
			BrokerID:       ci.Broker.ID,
			NetLoadKWh:     ci.NetLoadKWh,
			P1:             ci.P1,
			P2:             ci.P2,
			CurtailmentKWh: ci.CurtailmentKWh,
		})
	}
	slices.SortFunc(out, func(a, b Charge) int { return cmp.Compare(a.BrokerID, b.BrokerID) })
	return out
}

// NewSummary builds the summary of one settlement pass.
func NewSummary(timeslot int, strategy string, res settlement.Result, cis []*settlement.ChargeInfo) Summary {
	s := Summary{
		Timeslot:             timeslot,
		Strategy:             strategy,
		TotalImbalanceKWh:    res.TotalImbalanceKWh,
		RegulatingMarketCost: res.RegulatingMarketCost,
		BrokerCost:           res.BrokerCost,
		Budget:               res.Budget(),
		Flat:                 res.Flat,
		Charges:              Charges(timeslot, cis),
	}
	for _, err := range res.Inconsistencies {
		s.Inconsistencies = append(s.Inconsistencies, err.Error())
	}
	return s
}

// WriteJSON writes the summaries to w as an indented JSON array.
func WriteJSON(w io.Writer, summaries []Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

// WriteCSV writes one row per broker charge.
func WriteCSV(w io.Writer, charges []Charge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timeslot", "broker_id", "net_load_kwh", "p1", "p2", "curtailment_kwh"}); err != nil {
		return err
	}
	for _, c := range charges {
		rec := []string{
			strconv.Itoa(c.Timeslot),
			c.BrokerID,
			formatFloat(c.NetLoadKWh),
			formatFloat(c.P1),
			formatFloat(c.P2),
			formatFloat(c.CurtailmentKWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
