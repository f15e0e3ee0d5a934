package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"sieve/internal/config"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		resume      bool
		retryErrors bool
		noHistory   bool
		workers     int
		autosave    int
	)

	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Validate every identifier in a candidate file",
		Long: `Probe each identifier in <source> against the configured oracle.

Progress is checkpointed to <name>_backup<ext> every --autosave completions and
when the run is interrupted. The classification is written to
<name>_result<ext>; the source file is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			cfg := *base
			flags := cmd.Flags()
			if flags.Changed("resume") {
				cfg.Engine.Resume = resume
			}
			if flags.Changed("retry-errors") {
				cfg.Engine.RetryErrors = retryErrors
			}
			if flags.Changed("workers") {
				cfg.Engine.Workers = workers
			}
			if flags.Changed("autosave") {
				cfg.Engine.Autosave = autosave
			}
			if noHistory {
				cfg.History.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			source = filepath.Clean(source)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := &runner{
				cfg:      &cfg,
				source:   source,
				logger:   logger,
				out:      cmd.OutOrStdout(),
				colorize: shouldColorize(cmd.OutOrStdout()),
			}
			return r.run(runCtx)
		},
	}

	cmd.Flags().BoolVarP(&resume, "resume", "r", false, "Resume from the checkpoint next to the source")
	cmd.Flags().BoolVar(&retryErrors, "retry-errors", false, "Probe records that previously ended in ERROR again")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history ledger")
	cmd.Flags().IntVarP(&workers, "workers", "w", config.Default().Engine.Workers, "Concurrent probes")
	cmd.Flags().IntVarP(&autosave, "autosave", "b", config.Default().Engine.Autosave, "Checkpoint every N completions (0 disables)")
	return cmd
}
