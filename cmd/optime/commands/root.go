package commands

import (
	"context"
	"os"
	"time"

	"optime/internal/config"
	"optime/internal/eventlog"
	"optime/internal/logging"
	"optime/internal/stats"
	"optime/internal/visuals"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "optime",
	Short: "optime finds the weekly time slots your friends are actually online",
	Long: `optime reads the event database of a companion presence-monitoring app,
reconstructs when that app was actually running, and builds a weekly
histogram of friend presence corrected for the app's own uptime.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("buildDate", BuildDate).
		Msg("optime starting")

	store, err := eventlog.Open(cfg.DBPath, cfg.UserID)
	if err != nil {
		return err
	}
	defer store.Close()

	// The two streams load concurrently; the analysis itself is a
	// single-threaded fold.
	var (
		activity []time.Time
		presence []eventlog.PresenceEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activity, err = store.ActivityTimestamps(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		presence, err = store.PresenceEvents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	grid := stats.NewGrid(cfg.BucketMinutes, time.Local)
	proc := stats.NewProcessor(grid, stats.Options{
		Threshold: cfg.RunningThreshold,
		FriendIDs: cfg.FriendIDs,
		StartTime: cfg.StartTime,
	})
	if err := proc.Run(activity, presence); err != nil {
		return err
	}

	values := grid.Project(stats.ProjectorOptions{
		Normalize:      cfg.Normalize,
		MinActivations: cfg.MinBucketActivations,
		NoDataZero:     cfg.NoDataZero,
	})
	return visuals.RenderTable(os.Stdout, values, cfg.BucketMinutes, visuals.Options{
		Color: isatty.IsTerminal(os.Stdout.Fd()),
	})
}
