package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nextair/internal/aircache"
	"nextair/internal/logging"
)

func newResolveCommand(cmdCtx *commandContext) *cobra.Command {
	var forceRefresh bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <title>...",
		Short: "Resolve one or more titles without touching the media server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, _, err := cmdCtx.newRunLogger(cfg)
			if err != nil {
				return err
			}
			zone, err := timezone(cfg)
			if err != nil {
				return fmt.Errorf("resolve timezone: %w", err)
			}

			r, store, err := buildResolver(cfg, logger, zone, forceRefresh)
			if err != nil {
				return err
			}

			results := make(map[string]aircache.Resolution, len(args))
			for _, title := range args {
				outcome, err := r.Resolve(cmd.Context(), title)
				if err != nil {
					return err
				}
				results[title] = outcome.Resolution
			}
			if err := store.Save(); err != nil {
				logger.Warn("cache save failed", logging.Error(err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}

			rows := make([][]string, 0, len(args))
			for _, title := range args {
				res := results[title]
				rows = append(rows, []string{
					title,
					res.Weekday,
					res.AirLocal,
					formatEpisode(res),
					res.MatchedTitle,
					formatScore(res),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Weekday", "Airs (local)", "Ep", "Matched", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Ignore cached results and re-query every title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit results as JSON")
	return cmd
}

func formatEpisode(res aircache.Resolution) string {
	if res.EpisodeNumber == 0 {
		return ""
	}
	return fmt.Sprintf("%d", res.EpisodeNumber)
}

func formatScore(res aircache.Resolution) string {
	if res.MatchScore == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", res.MatchScore)
}
