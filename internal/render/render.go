// Package render turns domain objects into styled terminal output for the
// CLI, plus a markdown export for scripts headed into an editor.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"reelsmith/internal/core"
)

const ruleWidth = 62

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	hookStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

// Script renders one script in full.
func Script(script *core.Script) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render(script.Title))
	out.WriteString("\n")
	out.WriteString(rule())
	out.WriteString("\n")
	out.WriteString(field("ID", script.ID))
	out.WriteString(field("Platform", string(script.Platform)))
	out.WriteString(field("Tone", string(script.Tone)))
	out.WriteString(field("Duration", string(script.Duration)))
	if script.Metadata.GeneratedBy != "" {
		out.WriteString(field("Model", script.Metadata.GeneratedBy))
	}
	out.WriteString(field("Created", script.CreatedAt.Format("January 2, 2006 15:04 MST")))
	out.WriteString("\n")

	out.WriteString(section("Hook"))
	out.WriteString(hookStyle.Render(script.Hook))
	out.WriteString("\n\n")

	out.WriteString(section("Script"))
	out.WriteString(script.Content)
	out.WriteString("\n\n")

	if script.CallToAction != "" {
		out.WriteString(section("Call to Action"))
		out.WriteString(script.CallToAction)
		out.WriteString("\n")
	}

	return out.String()
}

// ScriptList renders stored scripts newest-first, one line each.
func ScriptList(scripts []core.Script) string {
	if len(scripts) == 0 {
		return dimStyle.Render("No scripts yet.") + "\n"
	}

	var out strings.Builder
	out.WriteString(labelStyle.Render(fmt.Sprintf("%-36s  %-10s  %-8s  %-12s  %s", "ID", "PLATFORM", "LENGTH", "CREATED", "TITLE")))
	out.WriteString("\n")
	for _, script := range scripts {
		out.WriteString(fmt.Sprintf("%-36s  %-10s  %-8s  %-12s  %s\n",
			script.ID,
			script.Platform,
			script.Duration,
			script.CreatedAt.Format("2006-01-02"),
			script.Title,
		))
	}
	return out.String()
}

// Job renders one analysis job, including results when it completed.
func Job(job *core.AnalysisJob) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render("Video Analysis"))
	out.WriteString("\n")
	out.WriteString(rule())
	out.WriteString("\n")
	out.WriteString(field("Job", job.ID))
	out.WriteString(field("Video", job.VideoURL))
	out.WriteString(field("Status", jobStatusBadge(job.Status)))
	out.WriteString(field("Submitted", job.CreatedAt.Format("January 2, 2006 15:04 MST")))
	out.WriteString(field("Updated", job.UpdatedAt.Format("January 2, 2006 15:04 MST")))

	if job.Status == core.JobFailed && job.ErrorDetail != "" {
		out.WriteString("\n")
		out.WriteString(failStyle.Render("Failed: " + job.ErrorDetail))
		out.WriteString("\n")
		return out.String()
	}

	if job.Results == nil {
		return out.String()
	}

	technical := job.Results.Technical
	out.WriteString("\n")
	out.WriteString(section("Technical"))
	out.WriteString(field("Duration", fmt.Sprintf("%.1fs", technical.DurationSeconds)))
	out.WriteString(field("Shots", fmt.Sprintf("%d", technical.ShotCount)))
	if len(technical.Labels) > 0 {
		out.WriteString(field("Labels", strings.Join(technical.Labels, ", ")))
	}
	if technical.Transcript != "" {
		out.WriteString(field("Transcript", preview(technical.Transcript, 200)))
	}

	qualitative := job.Results.Qualitative
	out.WriteString("\n")
	out.WriteString(section("Qualitative"))
	if qualitative.ParseError != "" {
		out.WriteString(warnStyle.Render("The model response could not be parsed; raw output kept on the job record."))
		out.WriteString("\n")
	} else {
		out.WriteString(field("Virality", scoreBadge(qualitative.ViralityScore)))
		if qualitative.Summary != "" {
			out.WriteString(field("Summary", qualitative.Summary))
		}
		for _, strength := range qualitative.Strengths {
			out.WriteString("  " + okStyle.Render("+") + " " + strength + "\n")
		}
		for _, weakness := range qualitative.Weaknesses {
			out.WriteString("  " + failStyle.Render("-") + " " + weakness + "\n")
		}
	}

	if len(job.Results.Recommendations) > 0 {
		out.WriteString("\n")
		out.WriteString(section("Recommendations"))
		for i, recommendation := range job.Results.Recommendations {
			out.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
	}

	return out.String()
}

// JobList renders analysis jobs newest-first, one line each.
func JobList(jobs []core.AnalysisJob) string {
	if len(jobs) == 0 {
		return dimStyle.Render("No analysis jobs yet.") + "\n"
	}

	var out strings.Builder
	out.WriteString(labelStyle.Render(fmt.Sprintf("%-36s  %-12s  %-12s  %s", "ID", "STATUS", "SUBMITTED", "VIDEO")))
	out.WriteString("\n")
	for _, job := range jobs {
		out.WriteString(fmt.Sprintf("%-36s  %-12s  %-12s  %s\n",
			job.ID,
			jobStatusBadge(job.Status),
			job.CreatedAt.Format("2006-01-02"),
			job.VideoURL,
		))
	}
	return out.String()
}

// Snapshot renders one trends radar snapshot.
func Snapshot(snapshot *core.TrendsSnapshot) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render("Trends Radar"))
	out.WriteString(" " + dimStyle.Render(snapshot.Date.Format("January 2, 2006")))
	out.WriteString("\n")
	out.WriteString(rule())
	out.WriteString("\n")

	if snapshot.Status == core.SnapshotFailed {
		out.WriteString(failStyle.Render("Run failed: " + snapshot.ErrorDetail))
		out.WriteString("\n")
		return out.String()
	}
	if snapshot.Report == nil {
		out.WriteString(dimStyle.Render("Snapshot carries no report."))
		out.WriteString("\n")
		return out.String()
	}

	report := snapshot.Report
	if report.Summary != "" {
		out.WriteString(report.Summary)
		out.WriteString("\n\n")
	}

	if len(report.TopTrends) > 0 {
		out.WriteString(section("Top Trends"))
		for i, trend := range report.TopTrends {
			out.WriteString(fmt.Sprintf("%d. %s %s %s\n", i+1, titleStyle.Render(trend.Trend), dimStyle.Render("("+trend.Platform+")"), urgencyBadge(trend.Urgency)))
			if trend.Description != "" {
				out.WriteString("   " + trend.Description + "\n")
			}
			for _, idea := range trend.ContentIdeas {
				out.WriteString("   " + dimStyle.Render("idea:") + " " + idea + "\n")
			}
			out.WriteString("\n")
		}
	}

	if len(report.Insights) > 0 {
		out.WriteString(section("Insights"))
		for _, insight := range report.Insights {
			out.WriteString("  - " + insight + "\n")
		}
		out.WriteString("\n")
	}

	if len(report.Opportunities) > 0 {
		out.WriteString(section("Opportunities"))
		for _, opportunity := range report.Opportunities {
			out.WriteString("  " + okStyle.Render("*") + " " + opportunity.Opportunity + "\n")
			if opportunity.Action != "" {
				out.WriteString("    " + labelStyle.Render("action:") + " " + opportunity.Action + "\n")
			}
			if opportunity.ExpectedImpact != "" {
				out.WriteString("    " + labelStyle.Render("impact:") + " " + opportunity.ExpectedImpact + "\n")
			}
		}
	}

	return out.String()
}

// WriteScriptMarkdown exports a script as a markdown file and returns the
// path written.
func WriteScriptMarkdown(script *core.Script, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "scripts"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filename := fmt.Sprintf("script_%s_%s.md", time.Now().UTC().Format("2006-01-02"), shortID(script.ID))
	filePath := filepath.Join(outputDir, filename)

	var md strings.Builder
	md.WriteString(fmt.Sprintf("# %s\n\n", script.Title))
	md.WriteString(fmt.Sprintf("- Platform: %s\n", script.Platform))
	md.WriteString(fmt.Sprintf("- Tone: %s\n", script.Tone))
	md.WriteString(fmt.Sprintf("- Target length: %s\n", script.Duration))
	if script.Metadata.Idea != "" {
		md.WriteString(fmt.Sprintf("- Idea: %s\n", script.Metadata.Idea))
	}
	md.WriteString("\n## Hook\n\n")
	md.WriteString(script.Hook + "\n")
	md.WriteString("\n## Script\n\n")
	md.WriteString(script.Content + "\n")
	if script.CallToAction != "" {
		md.WriteString("\n## Call to Action\n\n")
		md.WriteString(script.CallToAction + "\n")
	}
	if script.Metadata.GeneratedBy != "" {
		md.WriteString(fmt.Sprintf("\n---\n\nGenerated by %s on %s.\n", script.Metadata.GeneratedBy, script.CreatedAt.Format("January 2, 2006")))
	}

	if err := os.WriteFile(filePath, []byte(md.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write script file %s: %w", filePath, err)
	}

	return filePath, nil
}

func rule() string {
	return dimStyle.Render(strings.Repeat("─", ruleWidth))
}

func section(name string) string {
	return sectionStyle.Render(strings.ToUpper(name)) + "\n" + rule() + "\n"
}

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label+":")) + " " + value + "\n"
}

func jobStatusBadge(status core.JobStatus) string {
	switch status {
	case core.JobCompleted:
		return okStyle.Render(string(status))
	case core.JobFailed:
		return failStyle.Render(string(status))
	case core.JobProcessing:
		return warnStyle.Render(string(status))
	default:
		return dimStyle.Render(string(status))
	}
}

func scoreBadge(score float64) string {
	text := fmt.Sprintf("%.0f/100", score)
	switch {
	case score >= 70:
		return okStyle.Render(text)
	case score >= 40:
		return warnStyle.Render(text)
	default:
		return failStyle.Render(text)
	}
}

func urgencyBadge(urgency string) string {
	switch strings.ToLower(urgency) {
	case "high":
		return failStyle.Render("[high]")
	case "medium":
		return warnStyle.Render("[medium]")
	case "low":
		return okStyle.Render("[low]")
	default:
		return dimStyle.Render("[" + urgency + "]")
	}
}

func preview(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
