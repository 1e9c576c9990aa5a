package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/fareline/internal/archive"
	"github.com/crimson-sun/fareline/internal/engine/classifier"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print the variant tag of every archive entry",
		Long:  "Classify every archive entry and print one \"index<TAB>tag\" line per entry. Nothing is written.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			entries, err := archive.NewFileSource(afero.NewOsFs(), cfg.Archive.Path).Load(cmd.Context())
			if err != nil {
				return err
			}
			cls := classifier.NewDefault()
			w := cmd.OutOrStdout()
			for i, raw := range entries {
				fmt.Fprintf(w, "%d\t%s\n", i, cls.Classify(raw))
			}
			return nil
		},
	}
}
