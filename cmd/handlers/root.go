/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"reelsmith/internal/config"
	"reelsmith/internal/llm"
	"reelsmith/internal/logger"
	"reelsmith/internal/persistence"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reelsmith",
		Short: "Reelsmith generates and analyzes short-form video scripts.",
		Long: `Reelsmith is a CLI for short-form video creators.

It turns a one-line idea into a platform-ready script, regenerates the
pieces you don't like, scores uploaded videos for virality, and keeps a
daily radar of what is trending across YouTube, TikTok and Instagram.

Commands:
  generate    Create a new script from an idea
  regenerate  Rework the hook, CTA, or the whole script
  scripts     Browse previously generated scripts
  analyze     Submit videos for analysis and check results
  trends      Run and inspect the daily trends radar
  worker      Run the background analysis worker
  migrate     Manage the database schema`,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reelsmith.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewRegenerateCmd())
	rootCmd.AddCommand(NewScriptsCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewTrendsCmd())
	rootCmd.AddCommand(NewWorkerCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Load configuration using the centralized config module
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(cfg.Logging.Level)
}

// openStore is a helper function to connect to the configured database
func openStore() (*persistence.PostgresStore, error) {
	store, err := persistence.NewPostgresStore(config.GetDatabase())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w\n\n"+
			"Make sure PostgreSQL is running and DATABASE_URL is correct.\n"+
			"Run 'reelsmith migrate up' to initialize the database schema.", err)
	}
	return store, nil
}

// buildModels constructs the LLM clients and the alias registry on top
// of them. The Gemini client doubles as the embedder.
func buildModels() (*llm.GeminiClient, *llm.Registry, error) {
	cfg := config.Get()

	gemini, err := llm.NewGeminiClient(cfg.AI.Gemini)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	openai, err := llm.NewOpenAIClient(cfg.AI.OpenAI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return gemini, llm.NewRegistry(cfg, gemini, openai), nil
}
