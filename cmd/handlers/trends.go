package handlers

import (
	"context"
	"fmt"
	"os"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
	"reelsmith/internal/logger"
	"reelsmith/internal/persistence"
	"reelsmith/internal/radar"
	"reelsmith/internal/render"
	"reelsmith/internal/search"

	"github.com/spf13/cobra"
)

// NewTrendsCmd creates the trends command group
func NewTrendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Run and inspect the daily trends radar",
		Long: `Sweep YouTube, TikTok, Instagram and general web signals, have the
model synthesize them into a report, and store the snapshot.

One run per day is the intended cadence; point cron at 'trends run'.

Examples:
  # Take today's snapshot
  reelsmith trends run

  # Read the latest report
  reelsmith trends show

  # Read the last week of reports
  reelsmith trends show --limit 7`,
	}

	cmd.AddCommand(newTrendsRunCmd())
	cmd.AddCommand(newTrendsShowCmd())

	return cmd
}

func newTrendsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch trend signals and synthesize today's report",
		Run: func(cmd *cobra.Command, args []string) {
			trendsRunRun(cmd.Context())
		},
	}
}

func newTrendsShowCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the most recent trend snapshots",
		Run: func(cmd *cobra.Command, args []string) {
			trendsShowRun(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 1, "Number of snapshots to show, newest first")

	return cmd
}

func trendsRunRun(ctx context.Context) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	_, registry, err := buildModels()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	r, err := buildRadar(registry, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	snapshot, err := r.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Trends run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(render.Snapshot(snapshot))

	// A failed run still leaves a snapshot behind; the exit code is for cron.
	if snapshot.Status == core.SnapshotFailed {
		os.Exit(1)
	}
}

func trendsShowRun(ctx context.Context, limit int) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	snapshots, err := store.Snapshots().Latest(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load trend snapshots: %v\n", err)
		os.Exit(1)
	}

	if len(snapshots) == 0 {
		fmt.Println("No trend snapshots yet")
		fmt.Println("💡 Take one with 'reelsmith trends run'")
		return
	}

	for i := range snapshots {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(render.Snapshot(&snapshots[i]))
	}
}

// buildRadar assembles the radar from the configured search providers.
// The general web provider is required; the platform-native sources are
// merged in when their credentials are present.
func buildRadar(models radar.ModelInvoker, store *persistence.PostgresStore) (*radar.Radar, error) {
	searchCfg := config.GetSearch()
	factory := search.NewProviderFactory()

	// The keyless default steps aside when a SerpAPI key is configured.
	providerType := search.ProviderType(searchCfg.DefaultProvider)
	if providerType == search.ProviderTypeDuckDuckGo && config.HasValidSerpAPI() {
		providerType = search.ProviderTypeSerpAPI
	}

	general, err := factory.CreateProvider(providerType, config.GetSearchProviderConfig(string(providerType)))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s search provider: %w", providerType, err)
	}

	r := radar.New(general, models, store.Snapshots(), config.GetTrends())

	if config.GetYouTubeAPIKey() != "" {
		yt, err := factory.CreateProvider(search.ProviderTypeYouTube, config.GetSearchProviderConfig("youtube"))
		if err != nil {
			logger.Warn("YouTube trending source unavailable", "error", err.Error())
		} else {
			r.AddNativeSource("youtube", yt)
		}
	}

	rd, err := factory.CreateProvider(search.ProviderTypeReddit, config.GetSearchProviderConfig("reddit"))
	if err != nil {
		logger.Warn("Reddit source unavailable", "error", err.Error())
	} else {
		r.AddNativeSource("general", rd)
	}

	return r, nil
}
