package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/schedulegen/app"
	"github.com/kilianp07/schedulegen/config"
	"github.com/kilianp07/schedulegen/core/schedule"
	"github.com/kilianp07/schedulegen/infra/logger"
)

type rootOptions struct {
	cfgPath  string
	welcome  bool
	outDir   string
	now      string
	cutoff   string
	dryRun   bool
	manifest string
	force    bool
}

// NewRootCmd builds the schedulegen command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "schedulegen [flags] <input-file>",
		Short: "Generate scheduled-transfer pre-proposals from a spreadsheet export",
		Long: "schedulegen reads one transfer per row and writes one pre-proposal file per row.\n" +
			"Rows hold sender;receiver;initial;remaining, or sender;receiver;amount with --welcome.",
		Args:          usageArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &app.UsageError{Err: err}
	})
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	f := root.Flags()
	f.BoolVar(&opts.welcome, "welcome", false, "single-release mode: sender;receiver;amount")
	f.StringVarP(&opts.outDir, "out-dir", "o", "", "directory receiving the proposal files")
	f.StringVar(&opts.now, "now", "", "reference time (RFC3339), defaults to the current time")
	f.StringVar(&opts.cutoff, "cutoff", "", "earliest release instant (RFC3339), overrides the computed cutoff")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print proposals to stdout and write nothing")
	f.StringVar(&opts.manifest, "manifest", "", "write a CSV manifest of generated files")
	f.BoolVar(&opts.force, "force", false, "overwrite existing proposal files")

	root.AddCommand(newPreviewCmd(opts), newJournalCmd(opts))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "error: %v\n", err)
		var usage *app.UsageError
		if errors.As(err, &usage) {
			fmt.Fprintf(root.ErrOrStderr(), "run '%s --help' for usage\n", root.Name())
		}
	}
	return app.ExitCode(err)
}

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &app.UsageError{Err: err}
		}
		return nil
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return nil, &app.ConfigError{Err: fmt.Errorf("load config: %w", err)}
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, &app.ConfigError{Err: err}
	}
	return cfg, nil
}

func parseTime(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &app.UsageError{Err: fmt.Errorf("--%s: %w", flag, err)}
	}
	return t, nil
}

func modeOf(welcome bool) schedule.Mode {
	if welcome {
		return schedule.ModeWelcome
	}
	return schedule.ModeMulti
}

func run(cmd *cobra.Command, opts *rootOptions, input string) error {
	ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now, err := parseTime("now", opts.now)
	if err != nil {
		return err
	}
	cutoff, err := parseTime("cutoff", opts.cutoff)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.manifest != "" {
		cfg.Output.Manifest = opts.manifest
	}
	if opts.force {
		cfg.Output.Overwrite = true
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	sum, err := svc.Run(ctx, app.Options{
		InputPath: input,
		Mode:      modeOf(opts.welcome),
		Now:       now,
		Cutoff:    cutoff,
		DryRun:    opts.dryRun,
		Stdout:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	if !opts.dryRun {
		for _, f := range sum.Files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d proposal(s), %s GTU, cutoff %s, first release %s, %d release(s) folded, run %s\n",
		sum.Rows, sum.Total.String(), sum.Cutoff.Format(time.RFC3339), sum.FirstRelease.Format(time.RFC3339), sum.Skipped, sum.RunID)
	return nil
}

// background is used when the command runs without a context.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
