package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cuemby/vmmv/pkg/journal"
	"github.com/spf13/cobra"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect past migrations",
	}
	cmd.AddCommand(newJournalListCmd())
	cmd.AddCommand(newJournalShowCmd())
	return cmd
}

func newJournalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.ListRuns()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tOLD\tNEW\tTYPE\tSTATE\tDRY RUN\tATTENTION")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\t%d\n",
					run.ID,
					run.StartedAt.Local().Format(time.RFC3339),
					run.OldID,
					run.NewID,
					dash(string(run.UnitType)),
					run.State,
					run.DryRun,
					len(run.Degraded()),
				)
			}
			return tw.Flush()
		},
	}
}

func newJournalShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show RUN-ID",
		Short: "Show one recorded migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.GetRun(args[0])
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run:      %s\n", run.ID)
			fmt.Fprintf(w, "Unit:     %s %s -> %s\n", dash(string(run.UnitType)), run.OldID, run.NewID)
			fmt.Fprintf(w, "State:    %s\n", run.State)
			fmt.Fprintf(w, "Dry run:  %t\n", run.DryRun)
			fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
			if !run.FinishedAt.IsZero() {
				fmt.Fprintf(w, "Finished: %s\n", run.FinishedAt.Local().Format(time.RFC3339))
			}
			if run.FailedStage != "" {
				fmt.Fprintf(w, "Stopped:  %s: %s\n", run.FailedStage, run.Error)
			}

			if len(run.Items) > 0 {
				fmt.Fprintln(w)
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "STAGE\tKIND\tBACKEND\tOLD\tNEW\tOUTCOME\tREASON")
				for _, item := range run.Items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						item.Stage, item.Kind, dash(item.Backend), item.Old, dash(item.New), item.Outcome, dash(item.Reason))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			for _, p := range run.PreImages {
				fmt.Fprintf(w, "\n--- %s (before)\n%s", p.Path, p.Content)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the run as JSON")
	return cmd
}

func openJournal(cmd *cobra.Command) (*journal.BoltJournal, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return journal.Open(cfg.JournalPath)
}
