package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"nextair/internal/aircache"
	"nextair/internal/logging"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the result cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheClearCommand(cmdCtx))
	return cacheCmd
}

func newCacheListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			zone, err := timezone(cfg)
			if err != nil {
				return fmt.Errorf("resolve timezone: %w", err)
			}

			store := aircache.NewStore(cfg.Cache.Path, aircache.TTL{}, zone, logging.NewNop())
			resolutions, audio := store.Snapshot()

			titles := make([]string, 0, len(resolutions))
			for title := range resolutions {
				titles = append(titles, title)
			}
			sort.Strings(titles)

			rows := make([][]string, 0, len(titles))
			for _, title := range titles {
				entry := resolutions[title]
				rows = append(rows, []string{
					title,
					entry.Result.Weekday,
					entry.Result.AirLocal,
					formatEpisode(entry.Result),
					entry.Timestamp,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Weekday", "Airs (local)", "Ep", "Cached at"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d resolutions, %d audio records (%s)\n",
				len(resolutions), len(audio), cfg.Cache.Path)
			return nil
		},
	}
}

func newCacheClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := os.Remove(cfg.Cache.Path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty")
					return nil
				}
				return fmt.Errorf("remove cache file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.Cache.Path)
			return nil
		},
	}
}
