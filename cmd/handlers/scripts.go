package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reelsmith/internal/persistence"
	"reelsmith/internal/render"

	"github.com/spf13/cobra"
)

// NewScriptsCmd creates the scripts command group
func NewScriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Browse previously generated scripts",
		Long: `Browse scripts stored in the database.

Examples:
  # List your most recent scripts
  reelsmith scripts list --user u1

  # Show one in full
  reelsmith scripts show 3f1d2a88-0c4e-4b7a-9a57-1d2f3e4a5b6c --user u1`,
	}

	cmd.AddCommand(newScriptsListCmd())
	cmd.AddCommand(newScriptsShowCmd())

	return cmd
}

func newScriptsListCmd() *cobra.Command {
	var (
		userID string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scripts, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			scriptsListRun(cmd.Context(), userID, limit, offset)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of scripts to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of scripts to skip")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newScriptsShowCmd() *cobra.Command {
	var (
		userID    string
		export    bool
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "show <script-id>",
		Short: "Show a single script in full",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			scriptsShowRun(cmd.Context(), args[0], userID, export, outputDir)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().BoolVar(&export, "export", false, "Also write the script as a markdown file")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for markdown exports (default: scripts)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func scriptsListRun(ctx context.Context, userID string, limit, offset int) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	list, err := store.Scripts().List(ctx, userID, persistence.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to list scripts: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(render.ScriptList(list))
	if len(list) > 0 {
		fmt.Printf("\n💡 Use 'reelsmith scripts show <id> --user %s' to view one in full\n", userID)
	}
}

func scriptsShowRun(ctx context.Context, scriptID, userID string, export bool, outputDir string) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	script, err := store.Scripts().Get(ctx, scriptID, userID)
	if err != nil {
		if errors.Is(err, persistence.ErrScriptNotFound) {
			fmt.Fprintf(os.Stderr, "❌ Script not found: %s\n", scriptID)
			fmt.Fprintf(os.Stderr, "💡 Check the ID with 'reelsmith scripts list --user %s'\n", userID)
		} else {
			fmt.Fprintf(os.Stderr, "❌ Failed to load script: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Print(render.Script(script))

	if export {
		path, err := render.WriteScriptMarkdown(script, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to export script: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("📄 Saved to %s\n", path)
	}
}
