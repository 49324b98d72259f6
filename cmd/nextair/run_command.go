package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"nextair/internal/logging"
	"nextair/internal/overlay"
	"nextair/internal/plex"
	"nextair/internal/resolver"
	"nextair/internal/runlog"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var forceRefresh bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve the whole library and write overlay files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidatePlex(); err != nil {
				return err
			}

			logger, runID, err := cmdCtx.newRunLogger(cfg)
			if err != nil {
				return err
			}
			zone, err := timezone(cfg)
			if err != nil {
				return fmt.Errorf("resolve timezone: %w", err)
			}

			// One run at a time; two writers would race on the cache file.
			lockPath := filepath.Join(filepath.Dir(cfg.Cache.Path), "nextair.lock")
			if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
				return fmt.Errorf("create lock directory: %w", err)
			}
			lock := flock.New(lockPath)
			held, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !held {
				return errors.New("another nextair run is already in progress")
			}
			defer lock.Unlock()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			started := time.Now()
			if forceRefresh {
				logger.Info("force refresh enabled, cache reads disabled")
			}

			r, store, err := buildResolver(cfg, logger, zone, forceRefresh)
			if err != nil {
				return err
			}

			plexClient, err := plex.New(plex.Config{
				URL:    cfg.Plex.URL,
				Token:  cfg.Plex.Token,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			if err := plexClient.Connect(ctx); err != nil {
				return err
			}

			batch := resolver.NewBatch(r, plexClient, cfg.Plex.Library, cfg.Cache.CheckpointInterval)
			result, err := batch.Run(ctx)
			if err != nil {
				return err
			}

			if err := overlay.WriteWeekday(cfg.Output.OverlayFile, result.Resolutions); err != nil {
				return fmt.Errorf("write weekday overlay: %w", err)
			}
			if err := overlay.WriteAiringDay(cfg.Output.AiringDayFile, result.Resolutions, time.Now(), zone); err != nil {
				return fmt.Errorf("write airing-day overlay: %w", err)
			}
			if err := overlay.WriteDualAudio(cfg.Output.AudioFile, result.Audio); err != nil {
				return fmt.Errorf("write dual-audio overlay: %w", err)
			}
			if err := store.Save(); err != nil {
				logger.Warn("final cache save failed", logging.Error(err))
			}

			if cfg.RunLog.Enabled {
				recordRun(cmd, cfg.RunLog.Path, runlog.Run{
					ID:          runID,
					StartedAt:   started,
					Duration:    time.Since(started),
					Library:     cfg.Plex.Library,
					Total:       result.Summary.Total,
					CacheUsed:   result.Summary.CacheUsed,
					APICalls:    result.Summary.APICalls,
					AiringFound: result.Summary.AiringFound,
					NoAiring:    result.Summary.NoAiring,
					Errors:      result.Summary.Errors,
				})
			}

			printSummary(cmd, result.Summary, time.Since(started))
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Ignore cached results and re-query every title")
	return cmd
}

// recordRun appends to the run history. History is best-effort; a broken
// database must not fail a run that already produced its overlays.
func recordRun(cmd *cobra.Command, path string, run runlog.Run) {
	store, err := runlog.Open(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "run log unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Record(cmd.Context(), run); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "run log write failed: %v\n", err)
	}
}

func printSummary(cmd *cobra.Command, s resolver.Summary, elapsed time.Duration) {
	rows := [][]string{
		{"Shows", strconv.Itoa(s.Total)},
		{"Cache hits", strconv.Itoa(s.CacheUsed)},
		{"API calls", strconv.Itoa(s.APICalls)},
		{"Airing found", strconv.Itoa(s.AiringFound)},
		{"No airing", strconv.Itoa(s.NoAiring)},
		{"Audio rescans", strconv.Itoa(s.AudioRefreshed)},
		{"Errors", strconv.Itoa(s.Errors)},
		{"Elapsed", elapsed.Round(time.Second).String()},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Metric", "Value"}, rows,
		[]columnAlignment{alignLeft, alignRight}))
}
