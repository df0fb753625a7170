package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/schedulegen/app"
	coremetrics "github.com/kilianp07/schedulegen/core/metrics"
	"github.com/kilianp07/schedulegen/infra/journal"
	"github.com/kilianp07/schedulegen/pkg/export"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		welcome bool
		now     string
		cutoff  string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the effective release schedule",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseTime("now", now)
			if err != nil {
				return err
			}
			if ref.IsZero() {
				ref = time.Now()
			}
			at, err := parseTime("cutoff", cutoff)
			if err != nil {
				return err
			}
			switch format {
			case "table", "json", "yaml":
			default:
				return &app.UsageError{Err: fmt.Errorf("--format: unsupported value %q", format)}
			}
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			svc, err := app.New(cfg, app.WithJournal(journal.NopStore{}), app.WithSink(coremetrics.NopSink{}))
			if err != nil {
				return err
			}
			mode := modeOf(welcome)
			plan, err := svc.Plan(mode, ref, at)
			if err != nil {
				return err
			}
			sc, err := cfg.Schedule.Resolve()
			if err != nil {
				return &app.ConfigError{Err: err}
			}
			view := export.ScheduleView{
				Mode:    mode.String(),
				Now:     ref,
				Cutoff:  plan.Cutoff,
				Expiry:  plan.Expiry,
				Planned: sc.Planned(mode),
				Dates:   plan.Effective.Dates,
				Skipped: plan.Effective.Skipped,
			}
			return export.WriteSchedule(cmd.OutOrStdout(), format, view)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&welcome, "welcome", false, "preview the single-release schedule")
	f.StringVar(&now, "now", "", "reference time (RFC3339)")
	f.StringVar(&cutoff, "cutoff", "", "earliest release instant (RFC3339)")
	f.StringVar(&format, "format", "table", "output format: table, json or yaml")
	return cmd
}
