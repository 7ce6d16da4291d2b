package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelsmith/internal/core"
)

func sampleScript() *core.Script {
	return &core.Script{
		ID:           "3f1d2a88-0c4e-4b7a-9a57-1d2f3e4a5b6c",
		UserID:       "user-1",
		Title:        "Price with confidence",
		Hook:         "STOP undercharging for your work.",
		Content:      "Here is the script body, beat by beat.",
		CallToAction: "Follow for part two.",
		Tone:         core.ToneEducational,
		Duration:     core.Duration60s,
		Platform:     core.PlatformYouTube,
		Metadata: core.ScriptMetadata{
			Idea:        "How to price a freelance service",
			GeneratedBy: "creative-model",
		},
		CreatedAt: time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestScript(t *testing.T) {
	out := Script(sampleScript())

	for _, expected := range []string{
		"Price with confidence",
		"3f1d2a88-0c4e-4b7a-9a57-1d2f3e4a5b6c",
		"youtube",
		"educational",
		"60s",
		"creative-model",
		"HOOK",
		"STOP undercharging for your work.",
		"SCRIPT",
		"Here is the script body, beat by beat.",
		"CALL TO ACTION",
		"Follow for part two.",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Rendered script should contain %q", expected)
		}
	}
}

func TestScriptOmitsEmptyCallToAction(t *testing.T) {
	script := sampleScript()
	script.CallToAction = ""

	out := Script(script)
	if strings.Contains(out, "CALL TO ACTION") {
		t.Error("Rendered script should omit the call-to-action section when empty")
	}
}

func TestScriptList(t *testing.T) {
	scripts := []core.Script{
		*sampleScript(),
		{
			ID:        "aaaa1111-2222-3333-4444-555566667777",
			Title:     "A second script",
			Platform:  core.PlatformTikTok,
			Duration:  core.Duration30s,
			CreatedAt: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		},
	}

	out := ScriptList(scripts)

	if !strings.Contains(out, "Price with confidence") {
		t.Error("List should contain the first script title")
	}
	if !strings.Contains(out, "A second script") {
		t.Error("List should contain the second script title")
	}
	if !strings.Contains(out, "2026-03-10") {
		t.Error("List should contain creation dates")
	}
}

func TestScriptListEmpty(t *testing.T) {
	out := ScriptList(nil)
	if !strings.Contains(out, "No scripts yet") {
		t.Error("Empty list should say there are no scripts")
	}
}

func completedJob() *core.AnalysisJob {
	return &core.AnalysisJob{
		ID:       "job-1",
		UserID:   "user-1",
		VideoURL: "gs://videos/demo.mp4",
		Status:   core.JobCompleted,
		Results: &core.AnalysisResults{
			Technical: core.TechnicalAnalysis{
				Labels:          []string{"cooking", "kitchen"},
				ShotCount:       24,
				Transcript:      "Welcome back everyone.",
				DurationSeconds: 95.5,
			},
			Qualitative: core.QualitativeAnalysis{
				ViralityScore: 82,
				Summary:       "Strong hook, steady pacing.",
				Strengths:     []string{"Clear premise"},
				Weaknesses:    []string{"Slow middle section"},
			},
			Recommendations: []string{"Tighten the middle third"},
		},
		CreatedAt: time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, time.April, 2, 9, 5, 0, 0, time.UTC),
	}
}

func TestJobCompleted(t *testing.T) {
	out := Job(completedJob())

	for _, expected := range []string{
		"job-1",
		"gs://videos/demo.mp4",
		"completed",
		"TECHNICAL",
		"95.5s",
		"24",
		"cooking, kitchen",
		"Welcome back everyone.",
		"QUALITATIVE",
		"82/100",
		"Strong hook, steady pacing.",
		"Clear premise",
		"Slow middle section",
		"RECOMMENDATIONS",
		"1. Tighten the middle third",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Rendered job should contain %q", expected)
		}
	}
}

func TestJobFailed(t *testing.T) {
	job := &core.AnalysisJob{
		ID:          "job-2",
		VideoURL:    "gs://videos/broken.mp4",
		Status:      core.JobFailed,
		ErrorDetail: "video analysis unavailable: transport closed",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	out := Job(job)

	if !strings.Contains(out, "Failed: video analysis unavailable") {
		t.Error("Rendered job should contain the failure detail")
	}
	if strings.Contains(out, "TECHNICAL") {
		t.Error("Failed job should not render result sections")
	}
}

func TestJobPending(t *testing.T) {
	job := &core.AnalysisJob{
		ID:        "job-3",
		VideoURL:  "gs://videos/waiting.mp4",
		Status:    core.JobQueued,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	out := Job(job)

	if !strings.Contains(out, "queued") {
		t.Error("Rendered job should contain its status")
	}
	if strings.Contains(out, "TECHNICAL") || strings.Contains(out, "RECOMMENDATIONS") {
		t.Error("Pending job should not render result sections")
	}
}

func TestJobUnparsedQualitative(t *testing.T) {
	job := completedJob()
	job.Results.Qualitative = core.QualitativeAnalysis{
		ParseError: "could not parse model response",
		Raw:        "the model rambled",
	}

	out := Job(job)

	if !strings.Contains(out, "could not be parsed") {
		t.Error("Rendered job should note the unparsed qualitative response")
	}
	if strings.Contains(out, "0/100") {
		t.Error("Rendered job should not show a score for an unparsed response")
	}
}

func TestJobList(t *testing.T) {
	jobs := []core.AnalysisJob{
		*completedJob(),
		{ID: "job-9", VideoURL: "gs://videos/next.mp4", Status: core.JobQueued, CreatedAt: time.Now().UTC()},
	}

	out := JobList(jobs)

	if !strings.Contains(out, "job-1") || !strings.Contains(out, "job-9") {
		t.Error("List should contain both job IDs")
	}
	if !strings.Contains(out, "gs://videos/next.mp4") {
		t.Error("List should contain video URLs")
	}
}

func TestJobListEmpty(t *testing.T) {
	out := JobList(nil)
	if !strings.Contains(out, "No analysis jobs yet") {
		t.Error("Empty list should say there are no jobs")
	}
}

func completedSnapshot() *core.TrendsSnapshot {
	return &core.TrendsSnapshot{
		ID:     "snap-1",
		Date:   time.Date(2026, time.August, 14, 6, 0, 0, 0, time.UTC),
		Status: core.SnapshotCompleted,
		Report: &core.TrendsReport{
			TopTrends: []core.TopTrend{
				{
					Trend:        "Three-second hooks",
					Platform:     "youtube",
					Description:  "Openers compress to a single beat.",
					ContentIdeas: []string{"Recut an old video with a shorter opener"},
					Urgency:      "high",
				},
			},
			Insights:      []string{"Short-form pacing keeps accelerating"},
			Opportunities: []core.Opportunity{{Opportunity: "Niche explainers", Action: "Publish weekly", ExpectedImpact: "high"}},
			Summary:       "Hooks are getting shorter.",
		},
		CreatedAt: time.Date(2026, time.August, 14, 6, 0, 0, 0, time.UTC),
	}
}

func TestSnapshot(t *testing.T) {
	out := Snapshot(completedSnapshot())

	for _, expected := range []string{
		"Trends Radar",
		"August 14, 2026",
		"Hooks are getting shorter.",
		"TOP TRENDS",
		"Three-second hooks",
		"(youtube)",
		"[high]",
		"Openers compress to a single beat.",
		"Recut an old video with a shorter opener",
		"INSIGHTS",
		"Short-form pacing keeps accelerating",
		"OPPORTUNITIES",
		"Niche explainers",
		"Publish weekly",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Rendered snapshot should contain %q", expected)
		}
	}
}

func TestSnapshotFailed(t *testing.T) {
	snapshot := &core.TrendsSnapshot{
		ID:          "snap-2",
		Date:        time.Date(2026, time.August, 13, 6, 0, 0, 0, time.UTC),
		Status:      core.SnapshotFailed,
		ErrorDetail: "no trend signals fetched",
		CreatedAt:   time.Date(2026, time.August, 13, 6, 0, 0, 0, time.UTC),
	}

	out := Snapshot(snapshot)

	if !strings.Contains(out, "Run failed: no trend signals fetched") {
		t.Error("Rendered snapshot should contain the failure detail")
	}
	if strings.Contains(out, "TOP TRENDS") {
		t.Error("Failed snapshot should not render report sections")
	}
}

func TestSnapshotMissingReport(t *testing.T) {
	snapshot := completedSnapshot()
	snapshot.Report = nil

	out := Snapshot(snapshot)

	if !strings.Contains(out, "no report") {
		t.Error("Snapshot without a report should say so")
	}
}

func TestWriteScriptMarkdown(t *testing.T) {
	tmpDir := t.TempDir()

	filePath, err := WriteScriptMarkdown(sampleScript(), tmpDir)
	if err != nil {
		t.Fatalf("WriteScriptMarkdown failed: %v", err)
	}

	// Check that file was created
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		t.Error("Script file should be created")
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read script file: %v", err)
	}

	contentStr := string(content)
	for _, expected := range []string{
		"# Price with confidence",
		"- Platform: youtube",
		"- Idea: How to price a freelance service",
		"## Hook",
		"STOP undercharging for your work.",
		"## Script",
		"## Call to Action",
		"Generated by creative-model",
	} {
		if !strings.Contains(contentStr, expected) {
			t.Errorf("Markdown export should contain %q", expected)
		}
	}
}

func TestWriteScriptMarkdownFilenameFormat(t *testing.T) {
	tmpDir := t.TempDir()

	filePath, err := WriteScriptMarkdown(sampleScript(), tmpDir)
	if err != nil {
		t.Fatalf("WriteScriptMarkdown failed: %v", err)
	}

	filename := filepath.Base(filePath)
	dateStr := time.Now().UTC().Format("2006-01-02")

	if !strings.HasPrefix(filename, "script_"+dateStr+"_") {
		t.Errorf("Filename should carry the date, got %s", filename)
	}
	if !strings.HasSuffix(filename, ".md") {
		t.Errorf("Filename should end with .md, got %s", filename)
	}
	if !strings.Contains(filename, "3f1d2a88") {
		t.Errorf("Filename should carry the short script ID, got %s", filename)
	}
}

func TestWriteScriptMarkdownDefaultOutputDir(t *testing.T) {
	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	filePath, err := WriteScriptMarkdown(sampleScript(), "")
	if err != nil {
		t.Fatalf("WriteScriptMarkdown failed: %v", err)
	}

	if !strings.Contains(filePath, "scripts") {
		t.Errorf("Expected file in the default scripts directory, got %s", filePath)
	}

	expectedDir := filepath.Join(tmpDir, "scripts")
	if _, err := os.Stat(expectedDir); os.IsNotExist(err) {
		t.Error("Default scripts directory should be created")
	}
}

func TestWriteScriptMarkdownInvalidOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := WriteScriptMarkdown(sampleScript(), invalidPath)
	if err == nil {
		t.Error("Expected error when output directory is invalid")
	}
}
