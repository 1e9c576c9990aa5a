package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/fareline/internal/engine/taxonomy"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the known archive variants, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := pterm.TableData{{"GEN", "TAG", "DESCRIPTION"}}
			for _, v := range taxonomy.Default().Variants() {
				data = append(data, []string{strconv.Itoa(v.Generation), string(v.Tag), v.Desc})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
