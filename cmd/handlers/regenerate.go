package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reelsmith/internal/core"
	"reelsmith/internal/persistence"
	"reelsmith/internal/render"

	"github.com/spf13/cobra"
)

// NewRegenerateCmd creates the regenerate command
func NewRegenerateCmd() *cobra.Command {
	var (
		userID       string
		scriptID     string
		element      string
		instructions string
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate part of an existing script",
		Long: `Regenerate the hook, the call to action, or the whole script.

Element regenerations keep the rest of the script untouched and run on
the fast model. A full regeneration rewrites everything with the
creative model, steered away from the current version. Regenerating
replaces a script you already paid for, so it never touches the
monthly quota.

Examples:
  # A fresh hook
  reelsmith regenerate --user u1 --script <id> --element hook

  # A new CTA with steering
  reelsmith regenerate --user u1 --script <id> --element cta \
    --instructions "ask for a comment, not a follow"

  # Start over entirely
  reelsmith regenerate --user u1 --script <id> --element full`,
		Run: func(cmd *cobra.Command, args []string) {
			regenerateRun(cmd.Context(), userID, scriptID, core.Element(element), instructions)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID owning the script (required)")
	cmd.Flags().StringVarP(&scriptID, "script", "s", "", "Script ID to regenerate (required)")
	cmd.Flags().StringVarP(&element, "element", "e", "hook", "Element to regenerate: hook, cta, full")
	cmd.Flags().StringVar(&instructions, "instructions", "", "Extra instructions for the rewrite")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func regenerateRun(ctx context.Context, userID, scriptID string, element core.Element, instructions string) {
	if !element.Valid() {
		fmt.Fprintf(os.Stderr, "❌ Unknown element %q\n", element)
		fmt.Fprintf(os.Stderr, "💡 Valid elements are: hook, cta, full\n")
		os.Exit(1)
	}

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	orchestrator, _, err := buildOrchestrator(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	script, err := orchestrator.RegenerateElement(ctx, userID, scriptID, element, instructions)
	if err != nil {
		if errors.Is(err, persistence.ErrScriptNotFound) {
			fmt.Fprintf(os.Stderr, "❌ Script not found: %s\n", scriptID)
			fmt.Fprintf(os.Stderr, "💡 List your scripts with 'reelsmith scripts list --user %s'\n", userID)
		} else {
			fmt.Fprintf(os.Stderr, "❌ Regeneration failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Print(render.Script(script))
}
