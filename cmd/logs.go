package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/balancemkt/app/plugins"
	"github.com/kilianp07/balancemkt/core/balancing/logging"
	"github.com/kilianp07/balancemkt/core/settlement"
	"github.com/kilianp07/balancemkt/pkg/export"
)

var (
	logsFrom   int
	logsTo     int
	logsBroker string
	logsRun    string
	logsFormat string
	logsReplay bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the settlement log store",
	RunE:  queryLogs,
}

func init() {
	logsCmd.Flags().IntVar(&logsFrom, "from", 0, "first timeslot")
	logsCmd.Flags().IntVar(&logsTo, "to", 0, "last timeslot")
	logsCmd.Flags().StringVar(&logsBroker, "broker", "", "only records involving this broker")
	logsCmd.Flags().StringVar(&logsRun, "run", "", "settlement run id")
	logsCmd.Flags().StringVarP(&logsFormat, "format", "f", "json", "output format: json or csv")
	logsCmd.Flags().BoolVar(&logsReplay, "replay", false, "settle each record again and report differences")
	rootCmd.AddCommand(logsCmd)
}

func queryLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := plugins.NewLogStore(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	recs, err := store.Query(context.Background(), logging.LogQuery{
		RunID:    logsRun,
		FromSlot: logsFrom,
		ToSlot:   logsTo,
		BrokerID: logsBroker,
	})
	if err != nil {
		return fmt.Errorf("query logs: %w", err)
	}
	if logsReplay {
		return replayRecords(cmd, recs)
	}
	sums := make([]export.Summary, len(recs))
	for i, rec := range recs {
		sums[i] = recordSummary(rec)
	}
	return writeSummaries(cmd.OutOrStdout(), logsFormat, sums)
}

func replayRecords(cmd *cobra.Command, recs []logging.Record) error {
	var failed int
	for _, rec := range recs {
		kind, err := settlement.ParseKind(rec.Strategy)
		if err != nil {
			return err
		}
		mismatches, err := logging.Replay(rec, kind)
		if err != nil {
			return fmt.Errorf("replay %s: %w", rec.RunID, err)
		}
		if len(mismatches) == 0 {
			cmd.Printf("%s timeslot %d: ok\n", rec.RunID, rec.Timeslot)
			continue
		}
		failed++
		for _, m := range mismatches {
			cmd.Printf("%s timeslot %d: %s\n", rec.RunID, rec.Timeslot, m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records did not replay", failed, len(recs))
	}
	return nil
}

// recordSummary rebuilds the exported view of a stored settlement.
func recordSummary(rec logging.Record) export.Summary {
	loads := make(map[string]float64, len(rec.Inputs))
	for _, in := range rec.Inputs {
		loads[in.Broker.ID] = in.NetLoadKWh
	}
	sum := export.Summary{
		Timeslot:             rec.Timeslot,
		Strategy:             rec.Strategy,
		RegulatingMarketCost: rec.RegulatingMarketCost,
		Budget:               rec.Budget,
		Charges:              make([]export.Charge, 0, len(rec.Outputs)),
	}
	for _, out := range rec.Outputs {
		sum.TotalImbalanceKWh += loads[out.BrokerID]
		sum.BrokerCost += out.P1 + out.P2
		sum.Charges = append(sum.Charges, export.Charge{
			Timeslot:       rec.Timeslot,
			BrokerID:       out.BrokerID,
			NetLoadKWh:     loads[out.BrokerID],
			P1:             out.P1,
			P2:             out.P2,
			CurtailmentKWh: out.CurtailmentKWh,
		})
	}
	return sum
}
