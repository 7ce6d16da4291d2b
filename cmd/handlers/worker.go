package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reelsmith/internal/analysis"
	"reelsmith/internal/config"
	"reelsmith/internal/logger"
	"reelsmith/internal/videoai"

	"github.com/spf13/cobra"
)

// NewWorkerCmd creates the worker command for running the analysis runner
func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background video analysis worker",
		Long: `Run the worker that executes queued video analysis jobs.

The worker claims queued jobs from the database, runs the Video
Intelligence pipeline and the qualitative model on each, and writes the
results back. It also periodically fails jobs left in processing by a
dead worker.

Run exactly one worker per database unless you know your queue can keep
several busy. Stop it with Ctrl+C or SIGTERM; in-flight jobs finish
before it exits.

Example:
  reelsmith worker`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(ctx context.Context) error {
	logger.Info("Starting analysis worker")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	_, registry, err := buildModels()
	if err != nil {
		return err
	}

	analyzer, err := videoai.NewAnalyzer(config.GetVideo())
	if err != nil {
		return fmt.Errorf("failed to create video analyzer: %w\n\n"+
			"The worker needs Google Cloud credentials for the Video Intelligence API.\n"+
			"Point GOOGLE_APPLICATION_CREDENTIALS at a service account key file.", err)
	}
	defer func() { _ = analyzer.Close() }()

	runner := analysis.NewRunner(store.Jobs(), analyzer, registry, config.GetJobs())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		logger.Info("Worker shutdown initiated", "signal", sig.String())
		cancel()
	}()

	logger.Info("Press Ctrl+C to stop")

	// Blocks until the context is cancelled and in-flight jobs drain.
	runner.Run(runCtx)

	logger.Info("Worker stopped")
	return nil
}
