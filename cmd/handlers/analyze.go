package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"reelsmith/internal/analysis"
	"reelsmith/internal/config"
	"reelsmith/internal/core"
	"reelsmith/internal/persistence"
	"reelsmith/internal/render"

	"github.com/spf13/cobra"
)

// How often submit --wait polls for a terminal state.
const waitPollInterval = 5 * time.Second

// NewAnalyzeCmd creates the analyze command group
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit videos for analysis and check results",
		Long: `Submit uploaded videos for technical and qualitative analysis.

Jobs are queued in the database and executed by 'reelsmith worker'.
Submission returns immediately; use --wait to block until the job
finishes, or check back later with 'analyze status'.

Examples:
  # Queue a video and return
  reelsmith analyze submit gs://my-bucket/video.mp4 --user u1

  # Queue and wait for the verdict
  reelsmith analyze submit gs://my-bucket/video.mp4 --user u1 --wait

  # Check on a job
  reelsmith analyze status <job-id> --user u1

  # Fail jobs stuck in processing (cron-friendly)
  reelsmith analyze sweep`,
	}

	cmd.AddCommand(newAnalyzeSubmitCmd())
	cmd.AddCommand(newAnalyzeStatusCmd())
	cmd.AddCommand(newAnalyzeListCmd())
	cmd.AddCommand(newAnalyzeSweepCmd())

	return cmd
}

func newAnalyzeSubmitCmd() *cobra.Command {
	var (
		userID  string
		wait    bool
		timeout string
	)

	cmd := &cobra.Command{
		Use:   "submit <video-url>",
		Short: "Queue a video for analysis",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			analyzeSubmitRun(cmd.Context(), args[0], userID, wait, timeout)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID owning the job (required)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until the job reaches a terminal state")
	cmd.Flags().StringVar(&timeout, "timeout", "15m", "How long --wait is willing to wait")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAnalyzeStatusCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a job with any attached results",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			analyzeStatusRun(cmd.Context(), args[0], userID)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID owning the job (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAnalyzeListCmd() *cobra.Command {
	var (
		userID string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analysis jobs, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			analyzeListRun(cmd.Context(), userID, limit, offset)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of jobs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of jobs to skip")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAnalyzeSweepCmd() *cobra.Command {
	var staleAfter string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Fail jobs stuck in processing",
		Long: `Fail every job that has sat in processing beyond the stale window.

The worker sweeps on its own; this command exists for cron and for
recovering after a worker crash.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeSweep(cmd.Context(), staleAfter)
		},
	}

	cmd.Flags().StringVar(&staleAfter, "stale-after", "", "Stale window, e.g. 30m (default from config)")

	return cmd
}

func analyzeSubmitRun(ctx context.Context, videoURL, userID string, wait bool, timeout string) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	manager := analysis.NewManager(store.Jobs(), nil)

	job, err := manager.Submit(ctx, userID, videoURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to queue analysis job: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Analysis job queued: %s\n", job.ID)

	if !wait {
		fmt.Printf("💡 Check progress with 'reelsmith analyze status %s --user %s'\n", job.ID, userID)
		return
	}

	waitWindow, err := time.ParseDuration(timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid --timeout value: %s\n", timeout)
		os.Exit(1)
	}

	fmt.Println("⏳ Waiting for the worker to finish the job...")

	waitCtx, cancel := context.WithTimeout(ctx, waitWindow)
	defer cancel()

	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			fmt.Fprintf(os.Stderr, "❌ Gave up waiting after %s\n", waitWindow)
			fmt.Fprintf(os.Stderr, "💡 The job keeps running; check later with 'reelsmith analyze status %s --user %s'\n", job.ID, userID)
			os.Exit(1)
		case <-ticker.C:
			job, err = manager.GetStatus(waitCtx, job.ID, userID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "❌ Failed to check job status: %v\n", err)
				os.Exit(1)
			}
			if job.Status.Terminal() {
				fmt.Print(render.Job(job))
				if job.Status == core.JobFailed {
					os.Exit(1)
				}
				return
			}
		}
	}
}

func analyzeStatusRun(ctx context.Context, jobID, userID string) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	manager := analysis.NewManager(store.Jobs(), nil)

	job, err := manager.GetStatus(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrJobNotFound) {
			fmt.Fprintf(os.Stderr, "❌ Analysis job not found: %s\n", jobID)
			fmt.Fprintf(os.Stderr, "💡 List your jobs with 'reelsmith analyze list --user %s'\n", userID)
		} else {
			fmt.Fprintf(os.Stderr, "❌ Failed to load job: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Print(render.Job(job))
}

func analyzeListRun(ctx context.Context, userID string, limit, offset int) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	manager := analysis.NewManager(store.Jobs(), nil)

	jobs, err := manager.List(ctx, userID, persistence.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to list jobs: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(render.JobList(jobs))
	if len(jobs) > 0 {
		fmt.Printf("\n💡 Use 'reelsmith analyze status <id> --user %s' for full results\n", userID)
	}
}

func runAnalyzeSweep(ctx context.Context, staleAfter string) error {
	window := analysis.DefaultStaleAfter
	configured := staleAfter
	if configured == "" {
		configured = config.GetJobs().StaleAfter
	}
	if configured != "" {
		parsed, err := time.ParseDuration(configured)
		if err != nil {
			return fmt.Errorf("invalid stale window %q: %w", configured, err)
		}
		window = parsed
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager := analysis.NewManager(store.Jobs(), nil)

	swept, err := manager.SweepStale(ctx, window)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if swept == 0 {
		fmt.Println("No stale jobs found")
		return nil
	}

	fmt.Printf("⚠️  Failed %d stale job(s) stuck in processing for over %s\n", swept, window)
	return nil
}
