package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/fareline/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the history ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.History.Path == "" {
				return errors.WithHint(errors.New("no history ledger configured"),
					"set history.path, FARELINE_HISTORY_PATH or --history-db")
			}
			limit, _ := cmd.Flags().GetInt("limit")

			ledger, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			data := pterm.TableData{{"RUN", "GENERATED", "RAW", "NORMALIZED", "QUARANTINED", "REPAIRED"}}
			for _, r := range runs {
				data = append(data, []string{
					r.RunID,
					r.Generated.Format(time.RFC3339),
					strconv.Itoa(r.TotalRaw),
					strconv.Itoa(r.TotalNormalized),
					strconv.Itoa(r.TotalQuarantined),
					strconv.Itoa(r.TotalRepaired),
				})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "number of runs to show")
	return cmd
}
