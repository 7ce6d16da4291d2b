package core

import "time"

// Tone selects the voice a generated script is written in.
type Tone string

// Supported script tones.
const (
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneHumorous     Tone = "humorous"
	ToneEducational  Tone = "educational"
	ToneDramatic     Tone = "dramatic"
)

// Valid reports whether the tone is one of the supported values.
func (t Tone) Valid() bool {
	switch t {
	case ToneCasual, ToneProfessional, ToneHumorous, ToneEducational, ToneDramatic:
		return true
	}
	return false
}

// Duration is the target length of a generated script.
type Duration string

// Supported target durations.
const (
	Duration30s  Duration = "30s"
	Duration60s  Duration = "60s"
	Duration90s  Duration = "90s"
	Duration3min Duration = "3min"
)

// Valid reports whether the duration is one of the supported values.
func (d Duration) Valid() bool {
	switch d {
	case Duration30s, Duration60s, Duration90s, Duration3min:
		return true
	}
	return false
}

// Platform is the distribution target a script is written for.
type Platform string

// Supported platforms.
const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
)

// Valid reports whether the platform is one of the supported values.
func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformLinkedIn:
		return true
	}
	return false
}

// Plan is a user's subscription tier.
type Plan string

// Subscription tiers.
const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// ModelAlias is a logical model name resolved by the registry.
type ModelAlias string

// The closed set of model aliases.
const (
	AliasFastCheap    ModelAlias = "fast-cheap"    // low latency, low temperature; element regeneration
	AliasBalanced     ModelAlias = "balanced"      // mid cost; qualitative analysis, trend synthesis
	AliasBestCreative ModelAlias = "best-creative" // highest quality; full script generation
)

// GenerationRequest carries one script-generation call. Transient, never persisted.
type GenerationRequest struct {
	UserID            string   `json:"user_id"`            // Owner of the script to create
	Idea              string   `json:"idea"`               // The video idea, 10..1000 runes
	Tone              Tone     `json:"tone"`               // Voice for the script
	Duration          Duration `json:"duration"`           // Target length
	Platform          Platform `json:"platform"`           // Distribution target
	AdditionalContext string   `json:"additional_context"` // Optional free-text steering (can be empty)
}

// ScriptMetadata is free-form provenance recorded alongside a script.
type ScriptMetadata struct {
	Idea              string `json:"idea"`                         // Originating idea text
	AdditionalContext string `json:"additional_context,omitempty"` // Context supplied with the request
	GeneratedBy       string `json:"generated_by"`                 // Concrete model that produced the content
}

// Script is a generated short-form video script.
type Script struct {
	ID           string         `json:"id"`             // Unique identifier
	UserID       string         `json:"user_id"`        // Owning user
	Title        string         `json:"title"`          // Script title
	Hook         string         `json:"hook"`           // Opening line(s) meant to stop the scroll
	Content      string         `json:"content"`        // Full script body
	CallToAction string         `json:"call_to_action"` // Closing ask
	Tone         Tone           `json:"tone"`           // Tone copied from the request
	Duration     Duration       `json:"duration"`       // Target duration copied from the request
	Platform     Platform       `json:"platform"`       // Platform copied from the request
	Metadata     ScriptMetadata `json:"metadata"`       // Provenance
	Embedding    []float64      `json:"embedding"`      // Content embedding; nil when computation failed
	CreatedAt    time.Time      `json:"created_at"`     // Creation timestamp (UTC)
	UpdatedAt    time.Time      `json:"updated_at"`     // Last mutation timestamp (UTC)
}

// Profile is the slice of a creator's account this subsystem reads. Never written here.
type Profile struct {
	UserID         string `json:"user_id"`         // Account identifier
	Plan           Plan   `json:"plan"`            // Subscription tier
	ContentStyle   string `json:"content_style"`   // Optional style steering (can be empty)
	TargetAudience string `json:"target_audience"` // Optional audience steering (can be empty)
}

// ParseSource tags how a model response was turned into script fields.
type ParseSource string

// Parse outcomes.
const (
	ParseStructured ParseSource = "structured" // strict JSON matched the declared schema
	ParseFallback   ParseSource = "fallback"   // heuristic extraction from free-form text
)

// ParsedScript is the structured form of a script-generation model response.
// Source makes the degraded path explicit instead of hiding it in control flow.
type ParsedScript struct {
	Title        string      `json:"title"`          // Script title
	Hook         string      `json:"hook"`           // Opening hook
	Content      string      `json:"content"`        // Script body
	CallToAction string      `json:"call_to_action"` // Closing ask
	Source       ParseSource `json:"-"`              // How these fields were obtained
}

// Element identifies which part of a script a regeneration targets.
type Element string

// Regeneration targets. Any other value is rejected.
const (
	ElementHook Element = "hook"
	ElementCTA  Element = "cta"
	ElementFull Element = "full"
)

// Valid reports whether the element is a supported regeneration target.
func (e Element) Valid() bool {
	switch e {
	case ElementHook, ElementCTA, ElementFull:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

// Job lifecycle states. Transitions are one-directional:
// queued -> processing -> completed|failed.
const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition can occur from the status.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// TechnicalAnalysis is the machine-measured profile of an uploaded video.
type TechnicalAnalysis struct {
	Labels          []string `json:"labels"`           // Detected content labels, best first
	ShotCount       int      `json:"shot_count"`       // Number of detected shots (cuts + 1)
	Transcript      string   `json:"transcript"`       // Speech transcript (can be empty)
	DurationSeconds float64  `json:"duration_seconds"` // Video length in seconds
}

// QualitativeAnalysis is the model's judgement of a video's virality signals.
// When the model response could not be parsed, ParseError and Raw carry the
// failure and the verbatim response; the scored fields stay at zero values.
type QualitativeAnalysis struct {
	HookEffectiveness   string   `json:"hook_effectiveness,omitempty"`   // How well the opening holds attention
	NarrativeStructure  string   `json:"narrative_structure,omitempty"`  // Assessment of the story arc
	EngagementPotential string   `json:"engagement_potential,omitempty"` // Likelihood of comments/shares
	Strengths           []string `json:"strengths,omitempty"`            // What works
	Weaknesses          []string `json:"weaknesses,omitempty"`           // What does not
	ViralityScore       float64  `json:"virality_score,omitempty"`       // 0..100
	Summary             string   `json:"summary,omitempty"`              // One-paragraph verdict
	ParseError          string   `json:"error,omitempty"`                // Set when the model response was unparseable
	Raw                 string   `json:"raw,omitempty"`                  // Verbatim response when unparseable
}

// AnalysisResults is the merged outcome attached to a completed job.
type AnalysisResults struct {
	Technical       TechnicalAnalysis   `json:"technical"`       // Measured profile
	Qualitative     QualitativeAnalysis `json:"qualitative"`     // Model judgement
	Recommendations []string            `json:"recommendations"` // Derived heuristic suggestions
}

// AnalysisJob is one unit of background video analysis work.
type AnalysisJob struct {
	ID          string           `json:"id"`                     // Unique identifier
	UserID      string           `json:"user_id"`                // Owning user
	VideoURL    string           `json:"video_url"`              // Source video reference
	Status      JobStatus        `json:"status"`                 // Current lifecycle state
	Results     *AnalysisResults `json:"results,omitempty"`      // Present only when completed
	ErrorDetail string           `json:"error_detail,omitempty"` // Present only when failed
	CreatedAt   time.Time        `json:"created_at"`             // Submission timestamp (UTC)
	UpdatedAt   time.Time        `json:"updated_at"`             // Last transition timestamp (UTC)
}

// SnapshotStatus is the outcome of one trends radar run.
type SnapshotStatus string

// Snapshot outcomes. A failed run still writes a snapshot so a missing day
// is distinguishable from a job that never ran.
const (
	SnapshotCompleted SnapshotStatus = "completed"
	SnapshotFailed    SnapshotStatus = "failed"
)

// TrendSignal is one raw result fetched for a platform.
type TrendSignal struct {
	Title   string `json:"title"`             // Result headline
	Snippet string `json:"snippet,omitempty"` // Short excerpt (can be empty)
	URL     string `json:"url,omitempty"`     // Source link (can be empty)
	Source  string `json:"source"`            // Provider that produced the signal
}

// TopTrend is one synthesized trend in a radar report.
type TopTrend struct {
	Trend        string   `json:"trend"`         // Name of the trend
	Platform     string   `json:"platform"`      // Where it is happening
	Description  string   `json:"description"`   // What it is
	ContentIdeas []string `json:"content_ideas"` // Concrete video ideas riding it
	Urgency      string   `json:"urgency"`       // How fast a creator should move
}

// Opportunity is one actionable opening surfaced by the radar.
type Opportunity struct {
	Opportunity    string `json:"opportunity"`     // The opening
	Action         string `json:"action"`          // What to do about it
	ExpectedImpact string `json:"expected_impact"` // Why it is worth doing
}

// TrendsReport is the synthesized analysis of one radar run.
type TrendsReport struct {
	TopTrends     []TopTrend    `json:"top_trends"`    // Ranked trends across platforms
	Insights      []string      `json:"insights"`      // Cross-platform observations
	Opportunities []Opportunity `json:"opportunities"` // Actionable openings
	Summary       string        `json:"summary"`       // One-paragraph digest
}

// TrendsSnapshot is the persisted record of one radar run, successful or not.
type TrendsSnapshot struct {
	ID          string                   `json:"id"`                     // Unique identifier
	Date        time.Time                `json:"date"`                   // Day the run covers (UTC)
	Signals     map[string][]TrendSignal `json:"signals"`                // Raw per-platform signals, keyed by platform name
	Report      *TrendsReport            `json:"report,omitempty"`       // Present only when completed
	Status      SnapshotStatus           `json:"status"`                 // Run outcome
	ErrorDetail string                   `json:"error_detail,omitempty"` // Present only when failed
	CreatedAt   time.Time                `json:"created_at"`             // Persist timestamp (UTC)
}
