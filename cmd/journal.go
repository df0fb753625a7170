package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/schedulegen/app"
	"github.com/kilianp07/schedulegen/core/amount"
	"github.com/kilianp07/schedulegen/infra/journal"
)

func newJournalCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal related commands",
	}
	var q journal.Query
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List generated proposals",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if cfg.Journal.Backend == "none" {
				return &app.ConfigError{Err: fmt.Errorf("journal is disabled, set journal.backend to jsonl or sqlite")}
			}
			store, err := journal.Open(cfg.Journal)
			if err != nil {
				return &app.IOError{Path: cfg.Journal.Path, Err: err}
			}
			defer store.Close()
			recs, err := store.Query(background(cmd), q)
			if err != nil {
				return &app.IOError{Path: cfg.Journal.Path, Err: err}
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tTIME\tROW\tFILE\tSENDER\tRECEIVER\tGTU\tRELEASES")
			for _, r := range recs {
				total := r.Total
				if n, err := strconv.ParseUint(r.Total, 10, 64); err == nil {
					total = amount.Amount(n).String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\n",
					r.RunID, r.Timestamp.Format(time.RFC3339), r.Row, r.File, r.Sender, r.Receiver, total, r.Releases)
			}
			return tw.Flush()
		},
	}
	ls.Flags().StringVar(&q.RunID, "run", "", "only show records of this run")
	ls.Flags().StringVar(&q.Sender, "sender", "", "only show records of this sender")
	cmd.AddCommand(ls)
	return cmd
}
