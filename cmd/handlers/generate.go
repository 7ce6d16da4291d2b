package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
	"reelsmith/internal/persistence"
	"reelsmith/internal/quota"
	"reelsmith/internal/render"
	"reelsmith/internal/scripts"
	"reelsmith/internal/similar"
	"reelsmith/internal/vectorstore"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		userID    string
		idea      string
		tone      string
		duration  string
		platform  string
		extra     string
		export    bool
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new video script from an idea",
		Long: `Generate a short-form video script from a one-line idea.

The idea is combined with your profile, your most similar past scripts,
and the requested tone, length and platform, then sent to the creative
model. The result is stored and printed.

Examples:
  # Generate with defaults (casual, 60s, youtube)
  reelsmith generate --user u1 --idea "Why most freelancers undercharge"

  # A dramatic 30-second TikTok script
  reelsmith generate --user u1 --idea "My worst client story" \
    --tone dramatic --duration 30s --platform tiktok

  # Extra steering and a markdown export
  reelsmith generate --user u1 --idea "Meal prep for night-shift workers" \
    --context "audience are nurses, keep it kind" --export`,
		Run: func(cmd *cobra.Command, args []string) {
			generateRun(cmd.Context(), core.GenerationRequest{
				UserID:            userID,
				Idea:              idea,
				Tone:              core.Tone(tone),
				Duration:          core.Duration(duration),
				Platform:          core.Platform(platform),
				AdditionalContext: extra,
			}, export, outputDir)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID owning the script (required)")
	cmd.Flags().StringVarP(&idea, "idea", "i", "", "Video idea, 10-1000 characters (required)")
	cmd.Flags().StringVar(&tone, "tone", "casual", "Tone: casual, professional, humorous, educational, dramatic")
	cmd.Flags().StringVar(&duration, "duration", "60s", "Target length: 30s, 60s, 90s, 3min")
	cmd.Flags().StringVar(&platform, "platform", "youtube", "Platform: youtube, tiktok, instagram, linkedin")
	cmd.Flags().StringVar(&extra, "context", "", "Additional free-text steering for the model")
	cmd.Flags().BoolVar(&export, "export", false, "Also write the script as a markdown file")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for markdown exports (default: scripts)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("idea")

	return cmd
}

func generateRun(ctx context.Context, req core.GenerationRequest, export bool, outputDir string) {
	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	orchestrator, guard, err := buildOrchestrator(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	script, err := orchestrator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			fmt.Fprintf(os.Stderr, "💡 Upgrade to a paid plan or wait for the monthly reset\n")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "❌ Script generation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(render.Script(script))

	if usage, err := guard.Usage(ctx, req.UserID); err == nil && usage.Limit > 0 {
		fmt.Printf("\n💡 %d of %d free scripts used this month\n", usage.Used, usage.Limit)
	}

	if export {
		path, err := render.WriteScriptMarkdown(script, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to export script: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("📄 Saved to %s\n", path)
	}
}

// buildOrchestrator wires the full generation stack on top of an open
// store: quota guard, similarity retriever, model registry, embeddings.
func buildOrchestrator(store *persistence.PostgresStore) (*scripts.Orchestrator, *quota.Guard, error) {
	gemini, registry, err := buildModels()
	if err != nil {
		return nil, nil, err
	}

	vectors := vectorstore.NewPgVectorAdapter(store.DB())
	retriever := similar.NewRetriever(gemini, vectors)
	guard := quota.NewGuard(store.Profiles(), store.Scripts(), config.GetQuota().FreeMonthlyLimit)

	orchestrator := scripts.NewOrchestrator(guard, retriever, registry, gemini, store.Profiles(), store.Scripts())
	return orchestrator, guard, nil
}
