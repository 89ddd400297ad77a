package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"waffle-cron/internal/app"
	"waffle-cron/internal/di"
	"waffle-cron/internal/domain/model"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "waffle-cron",
		Short:         "Run the scrape, grid update and archive maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTaskCommand(app.TaskScrape, "Run the data scrape and mail the outcome"),
		newTaskCommand(app.TaskUpdateGrids, "Run the grid update and mail the outcome"),
		newTaskCommand(app.TaskArchive, "Archive the data directory, upload it and mail the outcome"),
		newServeCommand(),
		newHistoryCommand(),
	)
	return root
}

func newTaskCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, cleanup, err := di.InitializeApp()
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			defer cleanup()

			run, err := application.RunTask(cmd.Context(), name)
			if run.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s in %s (exit status %d)\n",
					run.Task, run.Outcome, run.Elapsed(), run.ExitCode)
			}
			return err
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tasks on their cron schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, cleanup, err := di.InitializeApp()
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			defer cleanup()

			return application.Run(cmd.Context())
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent runs from the run ledger",
		Long: `Print recent runs from the run ledger.

The ledger is opened read-only. A running "serve" or task holds the ledger
lock, so history waits up to LOCK_TIMEOUT and then fails; run it while no
task is active, or stop serve first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := di.InitializeLedger()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
					return nil
				}
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer cleanup()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")
	return cmd
}

func printHistory(w io.Writer, runs []model.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tTASK\tOUTCOME\tEXIT\tELAPSED\tNOTIFY")
	for _, run := range runs {
		notified := "ok"
		if run.NotifyError != "" {
			notified = run.NotifyError
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Task,
			run.Outcome,
			run.ExitCode,
			run.Elapsed(),
			notified)
	}
	return tw.Flush()
}
