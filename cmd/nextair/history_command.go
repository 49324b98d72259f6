package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nextair/internal/runlog"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.RunLog.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (set run_log.enabled = true)")
				return nil
			}

			store, err := runlog.Open(cfg.RunLog.Path)
			if err != nil {
				return fmt.Errorf("open run log: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Library,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.CacheUsed),
					strconv.Itoa(run.APICalls),
					strconv.Itoa(run.AiringFound),
					strconv.Itoa(run.Errors),
					run.Duration.Round(time.Second).String(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Library", "Shows", "Cached", "API", "Airing", "Errors", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
