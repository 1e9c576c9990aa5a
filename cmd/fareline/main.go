package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crimson-sun/fareline/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fareline",
		Short: "Normalize a fare-check archive into canonical records",
		Long: `fareline - Fare archive normalizer.

Classifies every entry of a heterogeneous fare-check archive into a known
schema variant, maps it to canonical fare records, and quarantines entries
whose shape is not recognized. Each run replaces the canonical, quarantine
and audit artifacts together.

Examples:
  fareline run                        # normalize using fareline.toml / env
  fareline run --repair --workers 4   # also try to recover quarantined entries
  fareline run --dry-run              # print artifacts instead of writing them
  fareline classify --archive a.json  # show the variant of every entry
  fareline history --limit 5          # list recent runs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (TOML, YAML or JSON)")
	pf.String("archive", "", "archive file (JSON array)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "log as JSON")
	pf.String("history-db", "", "run history database (empty disables)")

	root.AddCommand(newRunCmd(), newClassifyCmd(), newVariantsCmd(), newHistoryCmd())
	return root
}

// persistentKeys maps root flags to config keys.
var persistentKeys = map[string]string{
	"archive":    "archive.path",
	"log-level":  "log.level",
	"log-json":   "log.json",
	"history-db": "history.path",
}

// loadConfig reads configuration with cmd's flags layered on top. Only flags
// set on the command line override file and environment values.
func loadConfig(cmd *cobra.Command, keys map[string]string) (config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := bindFlags(cmd, v, persistentKeys); err != nil {
		return config.Config{}, err
	}
	if err := bindFlags(cmd, v, keys); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper, keys map[string]string) error {
	for name, key := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag --%s", name)
		}
	}
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "fareline: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
}
