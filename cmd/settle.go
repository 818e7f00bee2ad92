package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/balancemkt/infra/logger"
	"github.com/kilianp07/balancemkt/pkg/export"
	"github.com/kilianp07/balancemkt/qa/scenarios"
)

var (
	settleFormat string
	settleCheck  bool
)

var settleCmd = &cobra.Command{
	Use:   "settle <scenario.yaml>",
	Short: "Settle one scenario file and print the charges",
	Args:  cobra.ExactArgs(1),
	RunE:  settleScenario,
}

func init() {
	settleCmd.Flags().StringVarP(&settleFormat, "format", "f", "json", "output format: json or csv")
	settleCmd.Flags().BoolVar(&settleCheck, "check", false, "fail when the outcome differs from the expected charges")
	rootCmd.AddCommand(settleCmd)
}

func settleScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(args[0])
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	out, err := scenarios.Run(sc, logger.New("settle"))
	if err != nil {
		return fmt.Errorf("settle %s: %w", sc.Name, err)
	}
	sum := export.NewSummary(sc.Timeslot, out.Kind.String(), out.Result, out.Charges)
	if err := writeSummaries(cmd.OutOrStdout(), settleFormat, []export.Summary{sum}); err != nil {
		return err
	}
	if settleCheck {
		if diffs := sc.Check(out); len(diffs) > 0 {
			for _, d := range diffs {
				cmd.PrintErrln(d)
			}
			return fmt.Errorf("scenario %s: %d mismatches", sc.Name, len(diffs))
		}
	}
	return nil
}

func writeSummaries(w io.Writer, format string, sums []export.Summary) error {
	switch format {
	case "json":
		return export.WriteJSON(w, sums)
	case "csv":
		var rows []export.Charge
		for _, s := range sums {
			rows = append(rows, s.Charges...)
		}
		return export.WriteCSV(w, rows)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
