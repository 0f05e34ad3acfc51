package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/cuemby/vmmv/pkg/config"
	"github.com/cuemby/vmmv/pkg/events"
	"github.com/cuemby/vmmv/pkg/journal"
	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/metrics"
	"github.com/cuemby/vmmv/pkg/migrate"
	"github.com/cuemby/vmmv/pkg/types"
	"github.com/cuemby/vmmv/pkg/volume"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vmmv [flags] OLD NEW",
		Short: "Renumber a virtual machine or container",
		Long: `vmmv moves a virtual machine or container from one id to another on the
local node. It renames the unit's volumes on LVM, ZFS and directory storages,
moves its definition, backups and firewall rules, and updates pool and job
membership.

There is no rollback. Items that could not be handled are listed at the end
of the run and recorded in the journal.`,
		Example: `  vmmv 100 200
  vmmv --dry-run 100 200
  vmmv journal list`,
		Args:          cobra.ExactArgs(2),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMigrate,
	}

	root.SetVersionTemplate(fmt.Sprintf(
		"vmmv version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := root.PersistentFlags()
	flags.String("config", config.DefaultPath, "Path to the configuration file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.String("journal", "", "Path to the migration journal")
	root.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	root.Flags().Bool("dry-run", false, "Show what would be changed without changing anything")

	root.AddCommand(newJournalCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("json-logs") {
		cfg.Log.JSON, _ = flags.GetBool("json-logs")
	}
	if flags.Changed("journal") {
		cfg.JournalPath, _ = flags.GetString("journal")
	}
	if flags.Changed("metrics-textfile") {
		cfg.MetricsTextfile, _ = flags.GetString("metrics-textfile")
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
		Output:     cmd.ErrOrStderr(),
	})
	return cfg, cfg.Validate()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		log.Info("dry run, nothing will be changed")
	}

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	broker := events.NewBroker()
	recorder := journal.NewRecorder(j)
	recorder.Attach(broker)
	metrics.NewCollector().Attach(broker)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := migrate.New(migrate.Options{
		Paths: migrate.Paths{
			NodeRoot:       cfg.NodeRoot,
			StorageCatalog: cfg.StorageCatalog,
			QemuDir:        cfg.QemuDir,
			LXCDir:         cfg.LXCDir,
			PoolRegistry:   cfg.PoolRegistry,
			JobRegistry:    cfg.JobRegistry,
			FirewallDir:    cfg.FirewallDir,
		},
		Runner:   volume.NewExecRunner(cfg.CommandTimeout),
		Commands: cfg.Commands,
		Verify:   cfg.VerifyRenames,
		DryRun:   dryRun,
		Broker:   broker,
	})

	report, err := o.Migrate(ctx, types.UnitID(args[0]), types.UnitID(args[1]))
	printReport(cmd.OutOrStdout(), report, err)
	if err == nil && len(report.Degraded()) > 0 {
		log.Warn("migration finished with items that need attention")
	}

	if recErr := recorder.Err(); recErr != nil {
		log.Errorf("journal is incomplete for this run", recErr)
	}
	if cfg.MetricsTextfile != "" {
		if mErr := metrics.WriteTextfile(cfg.MetricsTextfile); mErr != nil {
			log.Errorf("failed to export metrics", mErr)
		}
	}
	return err
}

func printReport(w io.Writer, report *migrate.Report, err error) {
	if report == nil {
		return
	}

	verb := "Migrated"
	if report.DryRun {
		verb = "Would migrate"
	}
	switch {
	case err != nil && report.Stage == migrate.StageValidate:
		return
	case err != nil:
		fmt.Fprintf(w, "Migration of %s to %s stopped at stage %s (run %s)\n", report.OldID, report.NewID, report.Stage, report.RunID)
	default:
		fmt.Fprintf(w, "%s %s %s to %s (run %s)\n", verb, report.UnitType, report.OldID, report.NewID, report.RunID)
	}

	if len(report.Items) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STAGE\tKIND\tBACKEND\tOLD\tNEW\tOUTCOME")
		for _, item := range report.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				item.Stage, item.Kind, dash(item.Backend), item.Old, dash(item.New), item.Outcome)
		}
		tw.Flush()
	}

	degraded := report.Degraded()
	if len(degraded) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d item(s) need attention:\n", len(degraded))
	for _, item := range degraded {
		fmt.Fprintf(w, "  %s %s %s: %s\n", item.Outcome, item.Kind, qualified(item), item.Reason)
	}
}

func qualified(item types.Item) string {
	if item.Backend == "" {
		return item.Old
	}
	return item.Backend + ":" + item.Old
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "vmmv version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
			return nil
		},
	}
}
