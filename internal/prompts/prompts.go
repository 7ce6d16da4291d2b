// Package prompts builds the system and user prompts for script generation,
// element regeneration, video qualitative analysis, and trend synthesis.
// Builders are pure: identical inputs produce identical prompts.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"reelsmith/internal/core"
)

const (
	// MaxDedupScripts caps how many prior scripts feed the dedup context.
	MaxDedupScripts = 3
	// DedupPreviewChars bounds each prior script excerpt in the dedup context.
	DedupPreviewChars = 200
	// TranscriptPreviewChars bounds the transcript excerpt in analysis prompts.
	TranscriptPreviewChars = 500
	// SignalsPerPlatformInPrompt caps the signals quoted per platform when
	// synthesizing trends.
	SignalsPerPlatformInPrompt = 5
)

// platformOrder fixes the section order in the trend synthesis prompt.
var platformOrder = []string{"youtube", "tiktok", "instagram", "general"}

// GenerationPrompt is the master system prompt for full script generation.
// Style and audience lines appear only when the creator profile provides them.
func GenerationPrompt(tone core.Tone, duration core.Duration, platform core.Platform, userStyle, targetAudience string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are an expert scriptwriter specialized in viral content for %s.\n\n", platform))
	prompt.WriteString(fmt.Sprintf("GOAL: Create a captivating %s script with a %s tone.\n\n", duration, tone))

	if userStyle != "" {
		prompt.WriteString(fmt.Sprintf("Creator style: %s\n", userStyle))
	}
	if targetAudience != "" {
		prompt.WriteString(fmt.Sprintf("Target audience: %s\n", targetAudience))
	}
	if userStyle != "" || targetAudience != "" {
		prompt.WriteString("\n")
	}

	prompt.WriteString("MANDATORY STRUCTURE:\n")
	prompt.WriteString("1. **HOOK** (first 3 seconds): must capture attention immediately\n")
	prompt.WriteString("2. **DEVELOPMENT**: keep interest with dynamic pacing\n")
	prompt.WriteString("3. **CLIMAX**: the point of maximum interest\n")
	prompt.WriteString("4. **CTA**: a clear and specific call to action\n\n")

	prompt.WriteString("RULES:\n")
	prompt.WriteString("- Use conversational, direct language\n")
	prompt.WriteString("- Include strategic pauses marked [pause]\n")
	prompt.WriteString("- Mark emphasis with CAPITALS\n")
	prompt.WriteString("- Be specific, not generic\n")
	prompt.WriteString("- Avoid cliches\n\n")

	prompt.WriteString("RESPONSE FORMAT (JSON):\n")
	prompt.WriteString(scriptJSONExample)

	return prompt.String()
}

// DedupContext builds the user prompt for generation: the idea, optional
// extra context, and prior similar scripts the model must not repeat.
func DedupContext(idea, additionalContext string, priorSimilar []core.Script) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Main idea: %s\n", idea))
	if additionalContext != "" {
		prompt.WriteString(fmt.Sprintf("Additional context: %s\n", additionalContext))
	}

	if len(priorSimilar) > 0 {
		prompt.WriteString("\n### Similar previous scripts (AVOID repeating these approaches):\n")
		for i, script := range priorSimilar {
			if i >= MaxDedupScripts {
				break
			}
			prompt.WriteString(fmt.Sprintf("\n%d. Previous hook: %s\n", i+1, script.Hook))
			prompt.WriteString(fmt.Sprintf("   Summary: %s...\n", truncate(script.Content, DedupPreviewChars)))
		}
	}

	return prompt.String()
}

// HookRegenerationPrompt asks for a replacement hook and nothing else.
func HookRegenerationPrompt(currentScript, currentHook, extraInstructions string) string {
	var prompt strings.Builder

	prompt.WriteString("Generate a completely different new hook for this script.\n\n")
	prompt.WriteString(fmt.Sprintf("Current hook (do NOT repeat this style): %s\n\n", currentHook))
	prompt.WriteString(fmt.Sprintf("Full script:\n%s\n", currentScript))
	if extraInstructions != "" {
		prompt.WriteString(fmt.Sprintf("\nAdditional instructions: %s\n", extraInstructions))
	}
	prompt.WriteString("\nGenerate ONLY the new hook (2 lines maximum). It must be striking and different from the previous one.")

	return prompt.String()
}

// CTARegenerationPrompt asks for a replacement call to action and nothing else.
func CTARegenerationPrompt(currentScript, currentCTA, extraInstructions string) string {
	var prompt strings.Builder

	prompt.WriteString("Generate a new call to action for this script.\n\n")
	prompt.WriteString(fmt.Sprintf("Current CTA: %s\n\n", currentCTA))
	prompt.WriteString(fmt.Sprintf("Script:\n%s\n", currentScript))
	if extraInstructions != "" {
		prompt.WriteString(fmt.Sprintf("\nAdditional instructions: %s\n", extraInstructions))
	}
	prompt.WriteString("\nGenerate ONLY the new CTA (2 lines maximum). It must be clear and motivating.")

	return prompt.String()
}

// QualitativeAnalysisPrompt embeds a technical summary and asks for the
// qualitative JSON verdict.
func QualitativeAnalysisPrompt(technical core.TechnicalAnalysis) string {
	var prompt strings.Builder

	prompt.WriteString("Analyze this video based on its technical data:\n\n")
	prompt.WriteString(fmt.Sprintf("Duration: %g seconds\n", technical.DurationSeconds))
	prompt.WriteString(fmt.Sprintf("Shot count: %d\n", technical.ShotCount))
	prompt.WriteString(fmt.Sprintf("Detected labels: %s\n", strings.Join(technical.Labels, ", ")))
	prompt.WriteString(fmt.Sprintf("Transcript: %s...\n\n", truncate(technical.Transcript, TranscriptPreviewChars)))

	prompt.WriteString("Provide a qualitative analysis covering:\n")
	prompt.WriteString("1. Effectiveness of the opening hook\n")
	prompt.WriteString("2. Pacing and narrative structure\n")
	prompt.WriteString("3. Engagement potential\n")
	prompt.WriteString("4. Strengths and weaknesses\n")
	prompt.WriteString("5. Virality score (0-100)\n\n")

	prompt.WriteString("JSON format:\n")
	prompt.WriteString(analysisJSONExample)

	return prompt.String()
}

// TrendSynthesisPrompt lays out per-platform signals and asks for the
// synthesized trends JSON.
func TrendSynthesisPrompt(signals map[string][]core.TrendSignal) string {
	var prompt strings.Builder

	prompt.WriteString("Analyze today's viral trends below and produce actionable insights for content creators:\n")
	prompt.WriteString(formatSignals(signals))
	prompt.WriteString("\nProduce the analysis in JSON format:\n")
	prompt.WriteString(trendsJSONExample)

	return prompt.String()
}

func formatSignals(signals map[string][]core.TrendSignal) string {
	var sb strings.Builder

	for _, platform := range orderedPlatforms(signals) {
		sb.WriteString(fmt.Sprintf("\n### %s TRENDS:\n", strings.ToUpper(platform)))
		for i, signal := range signals[platform] {
			if i >= SignalsPerPlatformInPrompt {
				break
			}
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, orNA(signal.Title)))
			sb.WriteString(fmt.Sprintf("   %s\n\n", orNA(signal.Snippet)))
		}
	}

	return sb.String()
}

// orderedPlatforms returns the known platforms in canonical order followed by
// any extra keys sorted, keeping the prompt deterministic.
func orderedPlatforms(signals map[string][]core.TrendSignal) []string {
	ordered := make([]string, 0, len(signals))
	seen := make(map[string]bool, len(platformOrder))
	for _, platform := range platformOrder {
		seen[platform] = true
		if _, ok := signals[platform]; ok {
			ordered = append(ordered, platform)
		}
	}

	var extras []string
	for platform := range signals {
		if !seen[platform] {
			extras = append(extras, platform)
		}
	}
	sort.Strings(extras)

	return append(ordered, extras...)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars]
}
