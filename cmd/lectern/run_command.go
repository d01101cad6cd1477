package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lectern/internal/capture"
	"lectern/internal/config"
	"lectern/internal/logging"
	"lectern/internal/manifest"
	"lectern/internal/pool"
	"lectern/internal/queue"
	"lectern/internal/runlock"
	"lectern/internal/segments"
	"lectern/internal/session"
)

const summaryElapsedPrecision = 100 * time.Millisecond

// captureDrivers maps driver names to factory constructors. The browser
// driver ships separately and registers under its own name; replay works
// against segments captured in an earlier run.
var captureDrivers = map[string]func(cfg *config.Config) (capture.ContextFactory, error){
	"replay": func(*config.Config) (capture.ContextFactory, error) {
		return capture.NewReplayFactory(nil), nil
	},
}

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		sectionFlag string
		indexFlag   int
		limitFlag   int
		workersFlag int
		driverFlag  string
		jsonFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bootstrap a session, build the job queue, and drain it with the worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			newFactory, ok := captureDrivers[driverFlag]
			if !ok {
				return fmt.Errorf("unknown capture driver %q (available: replay)", driverFlag)
			}
			factory, err := newFactory(cfg)
			if err != nil {
				return err
			}

			lock, err := runlock.Acquire(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			defer func() {
				_ = lock.Release()
			}()

			// Authentication is confirmed before anything else starts;
			// an unauthenticated run is aborted here, never degraded.
			platform := session.NewFileAdapter(cfg.Paths.CookiesPath, cfg.Paths.ManifestPath, cfg.Site.BaseURL)
			creds, err := session.Bootstrap(ctx, platform)
			if err != nil {
				return err
			}

			course, err := platform.ScrapeManifest(ctx)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}

			limit := limitFlag
			if limit == 0 {
				limit = cfg.Workers.JobLimit
			}
			entries, err := course.Flatten(manifest.Filter{
				Section:      sectionFlag,
				SectionIndex: indexFlag,
				Limit:        limit,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("manifest produced no jobs")
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Build(ctx, entries)
			if err != nil {
				return fmt.Errorf("build queue: %w", err)
			}
			logger.Info("queue built", logging.Int("jobs", count))

			workers := workersFlag
			if workers <= 0 {
				workers = cfg.Workers.Count
			}
			if workers > count {
				workers = count
			}

			segStore := segments.NewStore(cfg.Paths.SegmentDir)
			summary, err := pool.New(cfg, store, segStore, factory, logger).Run(ctx, creds, workers)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			printSummary(cmd, summary)
			if summary.Failed > 0 {
				return fmt.Errorf("%d job(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sectionFlag, "section", "s", "", "Process only sections matching this name (fuzzy, case-insensitive)")
	cmd.Flags().IntVar(&indexFlag, "section-index", 0, "Process only the section at this 1-based position")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Cap the number of jobs for unfiltered runs (0 = config default)")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Worker count (0 = config default)")
	cmd.Flags().StringVar(&driverFlag, "driver", "replay", "Capture driver to use")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the run summary as JSON")

	return cmd
}

func printSummary(cmd *cobra.Command, summary *pool.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Total", "Succeeded", "Failed", "Remaining", "Elapsed"},
		[][]string{{
			strconv.Itoa(summary.Total),
			strconv.Itoa(summary.Succeeded),
			strconv.Itoa(summary.Failed),
			strconv.Itoa(summary.Remaining),
			summary.Elapsed.Round(summaryElapsedPrecision).String(),
		}},
		0, 1, 2, 3, 4,
	))

	if len(summary.FailedJobs) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.FailedJobs))
	for _, failed := range summary.FailedJobs {
		rows = append(rows, []string{failed.SectionLabel, failed.Title, failed.LectureID, failed.Reason})
	}
	fmt.Fprintln(out, "Failed jobs:")
	fmt.Fprintln(out, renderTable(
		[]string{"Section", "Title", "Lecture", "Reason"},
		rows,
	))
}
