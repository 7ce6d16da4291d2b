// Package parse turns raw model output into structured results. Script
// parsing never fails; analysis and trend parsing report failures since no
// safe structural default exists for them.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reelsmith/internal/core"
)

// FallbackTitle is the placeholder title used when script output cannot be
// parsed as JSON.
const FallbackTitle = "Generated script"

// ErrUnparsable indicates a response that could not be parsed as the
// declared JSON contract.
var ErrUnparsable = errors.New("unparsable model response")

// Script extracts script fields from raw model output. Primary path: the
// declared JSON contract. On any parse failure the raw text becomes the
// content verbatim, with a line-scan for hook and CTA markers. A script is
// never lost to formatting drift.
func Script(raw string) core.ParsedScript {
	if extracted, ok := extractJSONObject(raw); ok {
		var parsed struct {
			Title        string `json:"title"`
			Hook         string `json:"hook"`
			Content      string `json:"content"`
			CallToAction string `json:"call_to_action"`
		}
		if err := json.Unmarshal([]byte(extracted), &parsed); err == nil && parsed.Content != "" {
			return core.ParsedScript{
				Title:        parsed.Title,
				Hook:         parsed.Hook,
				Content:      parsed.Content,
				CallToAction: parsed.CallToAction,
				Source:       core.ParseStructured,
			}
		}
	}
	return fallbackScript(raw)
}

// fallbackScript treats the whole response as content and scans for marker
// lines. A marker's value is the line that follows it, or the marker line
// itself when nothing follows.
func fallbackScript(raw string) core.ParsedScript {
	result := core.ParsedScript{
		Title:   FallbackTitle,
		Content: raw,
		Source:  core.ParseFallback,
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "hook:") {
			result.Hook = lineAfter(lines, i)
		} else if strings.Contains(lower, "cta:") || strings.Contains(lower, "call to action:") {
			result.CallToAction = lineAfter(lines, i)
		}
	}

	return result
}

func lineAfter(lines []string, i int) string {
	if i+1 < len(lines) {
		return lines[i+1]
	}
	return lines[i]
}

// Analysis parses a qualitative analysis response. On failure the result
// carries the parse error and the raw response instead of the analysis
// fields; the caller stores it as-is.
func Analysis(raw string) core.QualitativeAnalysis {
	if extracted, ok := extractJSONObject(raw); ok {
		var parsed core.QualitativeAnalysis
		if err := json.Unmarshal([]byte(extracted), &parsed); err == nil {
			return parsed
		}
	}
	return core.QualitativeAnalysis{
		ParseError: "could not parse model response",
		Raw:        raw,
	}
}

// Trends parses a trend synthesis response. A failure here fails the whole
// radar run, so it surfaces as an error rather than a degraded result.
func Trends(raw string) (*core.TrendsReport, error) {
	extracted, ok := extractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrUnparsable)
	}

	var report core.TrendsReport
	if err := json.Unmarshal([]byte(extracted), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return &report, nil
}

// extractJSONObject returns the first-to-last brace span of the response,
// which also strips markdown code fences around a JSON body.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
