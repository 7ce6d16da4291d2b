package analysis

import "reelsmith/internal/core"

// Recommendation thresholds.
const (
	maxRecommendedDuration = 180.0
	minCutsPerMinute       = 10.0
	minViralityScore       = 70.0
)

// Recommendations derives suggestions from the measured and judged
// analyses. The rules are independent and additive; each contributes at
// most one suggestion, and identical inputs always produce identical
// output.
func Recommendations(technical core.TechnicalAnalysis, qualitative core.QualitativeAnalysis) []string {
	recommendations := []string{}

	if technical.DurationSeconds > maxRecommendedDuration {
		recommendations = append(recommendations, "Consider shortening the video to under 3 minutes for better retention")
	}

	// A zero-length video has no pacing to judge.
	if technical.DurationSeconds > 0 {
		cutsPerMinute := float64(technical.ShotCount) / (technical.DurationSeconds / 60)
		if cutsPerMinute < minCutsPerMinute {
			recommendations = append(recommendations, "Increase the pace with more cuts and dynamic transitions")
		}
	}

	if qualitative.ViralityScore < minViralityScore {
		recommendations = append(recommendations, "Strengthen the opening hook to capture attention in the first 3 seconds")
	}

	return recommendations
}
