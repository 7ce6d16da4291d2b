package prompts

import "google.golang.org/genai"

// JSON examples quoted verbatim inside the prompts. The schemas below mirror
// them for backends that enforce structured output.
const (
	scriptJSONExample = `{
    "title": "Descriptive title for the script",
    "hook": "The opening lines that capture attention",
    "content": "Full script with formatting and pauses",
    "call_to_action": "Specific action for the viewer"
}`

	analysisJSONExample = `{
    "hook_effectiveness": "analysis of the hook",
    "narrative_structure": "analysis of the structure",
    "engagement_potential": "high/medium/low",
    "strengths": ["point 1", "point 2"],
    "weaknesses": ["point 1", "point 2"],
    "virality_score": 75,
    "summary": "executive summary"
}`

	trendsJSONExample = `{
    "top_trends": [
        {
            "trend": "name of the trend",
            "platform": "youtube/tiktok/instagram/all",
            "description": "brief description",
            "content_ideas": ["idea 1", "idea 2", "idea 3"],
            "urgency": "high/medium/low"
        }
    ],
    "insights": [
        "key insight 1",
        "key insight 2"
    ],
    "opportunities": [
        {
            "opportunity": "description",
            "action": "what to do",
            "expected_impact": "high/medium/low"
        }
    ],
    "summary": "executive summary of 2-3 lines"
}`
)

// ScriptSchema returns the response schema for full script generation.
func ScriptSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Descriptive title for the script",
			},
			"hook": {
				Type:        genai.TypeString,
				Description: "The opening lines that capture attention",
			},
			"content": {
				Type:        genai.TypeString,
				Description: "Full script with formatting and pauses",
			},
			"call_to_action": {
				Type:        genai.TypeString,
				Description: "Specific action for the viewer",
			},
		},
		Required: []string{"title", "hook", "content", "call_to_action"},
	}
}

// AnalysisSchema returns the response schema for qualitative video analysis.
func AnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"hook_effectiveness": {
				Type:        genai.TypeString,
				Description: "Analysis of the opening hook",
			},
			"narrative_structure": {
				Type:        genai.TypeString,
				Description: "Analysis of pacing and structure",
			},
			"engagement_potential": {
				Type:        genai.TypeString,
				Description: "high, medium, or low",
			},
			"strengths": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"weaknesses": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"virality_score": {
				Type:        genai.TypeNumber,
				Description: "Virality score from 0 to 100",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "Executive summary",
			},
		},
		Required: []string{"hook_effectiveness", "narrative_structure", "engagement_potential", "virality_score", "summary"},
	}
}

// TrendsSchema returns the response schema for trend synthesis.
func TrendsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"top_trends": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"trend": {
							Type:        genai.TypeString,
							Description: "Name of the trend",
						},
						"platform": {
							Type:        genai.TypeString,
							Description: "youtube, tiktok, instagram, or all",
						},
						"description": {
							Type:        genai.TypeString,
							Description: "Brief description",
						},
						"content_ideas": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
						"urgency": {
							Type:        genai.TypeString,
							Description: "high, medium, or low",
						},
					},
					Required: []string{"trend", "platform", "description"},
				},
			},
			"insights": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"opportunities": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"opportunity": {
							Type:        genai.TypeString,
							Description: "What the opportunity is",
						},
						"action": {
							Type:        genai.TypeString,
							Description: "What to do about it",
						},
						"expected_impact": {
							Type:        genai.TypeString,
							Description: "high, medium, or low",
						},
					},
					Required: []string{"opportunity", "action"},
				},
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "Executive summary of 2-3 lines",
			},
		},
		Required: []string{"top_trends", "insights", "opportunities", "summary"},
	}
}
