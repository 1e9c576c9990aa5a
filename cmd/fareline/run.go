package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/fareline/internal/archive"
	"github.com/crimson-sun/fareline/internal/config"
	"github.com/crimson-sun/fareline/internal/engine"
	"github.com/crimson-sun/fareline/internal/engine/audit"
	"github.com/crimson-sun/fareline/internal/engine/canonical"
	"github.com/crimson-sun/fareline/internal/engine/classifier"
	"github.com/crimson-sun/fareline/internal/engine/dedup"
	"github.com/crimson-sun/fareline/internal/engine/taxonomy"
	"github.com/crimson-sun/fareline/internal/history"
	"github.com/crimson-sun/fareline/internal/logging"
	"github.com/crimson-sun/fareline/internal/output"
	"github.com/crimson-sun/fareline/internal/output/file"
	"github.com/crimson-sun/fareline/internal/output/stdout"
	"github.com/crimson-sun/fareline/internal/pipeline"
)

var runKeys = map[string]string{
	"canonical":     "output.canonical",
	"quarantine":    "output.quarantine",
	"audit":         "output.audit",
	"dedupe":        "engine.dedupe",
	"repair":        "engine.repair",
	"workers":       "engine.workers",
	"live-snapshot": "engine.live_snapshot",
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Normalize the archive and replace all artifacts",
		Long: `Run one normalization pass.

The archive is read in full, every entry is classified and canonicalized,
and the canonical, quarantine and audit artifacts are staged and then
replaced together. If any artifact cannot be staged, the previous
artifacts are left untouched.`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
	f := cmd.Flags()
	f.String("canonical", "", "canonical dataset path")
	f.String("quarantine", "", "quarantine dataset path")
	f.String("audit", "", "audit summary path")
	f.Bool("dedupe", true, "collapse repeated observations")
	f.Bool("repair", false, "try to recover quarantined entries (low confidence)")
	f.Int("workers", 1, "entries processed concurrently")
	f.Bool("live-snapshot", false, "stamp records without an observation time with now")
	f.Bool("dry-run", false, "print artifacts to stdout instead of writing files")
	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, runKeys)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	logger := logging.Init(cfg.Log.JSON || dryRun, logging.ParseLevel(cfg.Log.Level))
	defer logger.Sync() //nolint:errcheck

	fs := afero.NewOsFs()
	tax := taxonomy.Default()
	reporter := audit.New(tax)
	canonOpts := canonical.Options{LiveSnapshot: cfg.Engine.LiveSnapshot}
	eng := engine.New(classifier.NewDefault(), canonical.New(canonOpts))

	var out output.Output = file.New(fs, file.Paths{
		Canonical:  cfg.Output.Canonical,
		Quarantine: cfg.Output.Quarantine,
		Audit:      cfg.Output.Audit,
	})
	if dryRun {
		out = stdout.NewWriter(cmd.OutOrStdout(), true)
	}

	opts := []pipeline.Option{pipeline.WithWorkers(cfg.Engine.Workers), pipeline.WithLogger(logger)}
	if cfg.Engine.Dedupe {
		opts = append(opts, pipeline.WithDedupe(dedup.New(dedup.Config{})))
	}
	if cfg.Engine.Repair {
		opts = append(opts, pipeline.WithRepair(canonOpts))
	}
	if ledger := openHistory(cfg, dryRun, logger); ledger != nil {
		defer ledger.Close()
		opts = append(opts, pipeline.WithHistory(ledger))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(archive.NewFileSource(fs, cfg.Archive.Path), eng, reporter, out, opts...)
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	table, err := reporter.Breakdown(res.Summary())
	if err != nil {
		return err
	}
	// Keep stdout clean for the dry-run document.
	w := cmd.OutOrStdout()
	if dryRun {
		w = cmd.ErrOrStderr()
	}
	fmt.Fprintln(w, table)
	return nil
}

// openHistory opens the run ledger when one is configured. A ledger that
// cannot be opened is logged and skipped; it never blocks a run.
func openHistory(cfg config.Config, dryRun bool, logger *zap.Logger) *history.Ledger {
	if cfg.History.Path == "" || dryRun {
		return nil
	}
	ledger, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history disabled", zap.String("path", cfg.History.Path), zap.Error(err))
		return nil
	}
	return ledger
}
