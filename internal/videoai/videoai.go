// Package videoai measures uploaded videos with the Google Video
// Intelligence API, producing the technical profile that feeds the
// qualitative analysis step.
package videoai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"reelsmith/internal/config"
	"reelsmith/internal/core"
	"reelsmith/internal/logger"
)

const (
	// DefaultSpeechLanguage is used when no speech language is configured.
	DefaultSpeechLanguage = "en-US"
	// DefaultAnnotateTimeout bounds one annotation run end to end.
	DefaultAnnotateTimeout = 180 * time.Second

	maxLabels  = 10
	maxRetries = 4
)

// ErrAnalysisUnavailable indicates the video could not be analyzed. The
// job that requested the analysis fails with this as its error detail.
var ErrAnalysisUnavailable = errors.New("video analysis unavailable")

// Analyzer runs label detection, shot change detection and speech
// transcription against a video source.
type Analyzer struct {
	client   *videointelligence.Client
	language string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewAnalyzer creates an analyzer from configuration. Credentials are
// resolved from the environment by the client library.
func NewAnalyzer(cfg config.Video) (*Analyzer, error) {
	client, err := videointelligence.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create video intelligence client: %w", err)
	}

	language := cfg.SpeechLanguage
	if language == "" {
		language = DefaultSpeechLanguage
	}

	timeout := DefaultAnnotateTimeout
	if cfg.AnnotateTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.AnnotateTimeout); err == nil {
			timeout = parsed
		}
	}

	return &Analyzer{
		client:   client,
		language: language,
		timeout:  timeout,
		log:      logger.Get(),
	}, nil
}

// Close releases the underlying API client.
func (a *Analyzer) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}

// Analyze annotates the video and reduces the response to the technical
// profile. The whole run, including transient-error retries, is bounded
// by the configured timeout.
func (a *Analyzer) Analyze(ctx context.Context, videoURL string) (core.TechnicalAnalysis, error) {
	if strings.TrimSpace(videoURL) == "" {
		return core.TechnicalAnalysis{}, fmt.Errorf("%w: video URL is required", ErrAnalysisUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := &vipb.AnnotateVideoRequest{
		InputUri: videoURL,
		Features: []vipb.Feature{
			vipb.Feature_LABEL_DETECTION,
			vipb.Feature_SHOT_CHANGE_DETECTION,
			vipb.Feature_SPEECH_TRANSCRIPTION,
		},
		VideoContext: &vipb.VideoContext{
			SpeechTranscriptionConfig: &vipb.SpeechTranscriptionConfig{
				LanguageCode:               a.language,
				EnableAutomaticPunctuation: true,
			},
		},
	}

	resp, err := a.annotateWithRetry(ctx, req)
	if err != nil {
		return core.TechnicalAnalysis{}, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	profile, err := profileFromResponse(resp)
	if err != nil {
		return core.TechnicalAnalysis{}, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	a.log.Info().
		Str("video_url", videoURL).
		Int("labels", len(profile.Labels)).
		Int("shot_count", profile.ShotCount).
		Float64("duration_seconds", profile.DurationSeconds).
		Msg("Technical analysis complete")
	return profile, nil
}

func (a *Analyzer) annotateWithRetry(ctx context.Context, req *vipb.AnnotateVideoRequest) (*vipb.AnnotateVideoResponse, error) {
	backoff := 750 * time.Millisecond
	var last error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var resp *vipb.AnnotateVideoResponse
		op, err := a.client.AnnotateVideo(ctx, req)
		if err == nil {
			resp, err = op.Wait(ctx)
			if err == nil {
				return resp, nil
			}
		}
		last = err

		if !retryable(err) {
			return nil, err
		}
		if attempt == maxRetries {
			break
		}

		a.log.Warn().Err(err).Int("attempt", attempt+1).Msg("Video annotation failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	}
	return false
}

// profileFromResponse reduces an annotation response to the shape the
// analysis pipeline consumes.
func profileFromResponse(resp *vipb.AnnotateVideoResponse) (core.TechnicalAnalysis, error) {
	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return core.TechnicalAnalysis{}, fmt.Errorf("no annotation results")
	}
	ar := resp.AnnotationResults[0]

	return core.TechnicalAnalysis{
		Labels:          topLabels(ar.SegmentLabelAnnotations, maxLabels),
		ShotCount:       len(ar.ShotAnnotations),
		Transcript:      joinTranscripts(ar.SpeechTranscriptions),
		DurationSeconds: videoDuration(ar),
	}, nil
}

// topLabels ranks segment labels by confidence and keeps the best ones.
func topLabels(annotations []*vipb.LabelAnnotation, limit int) []string {
	type ranked struct {
		name       string
		confidence float32
	}

	all := make([]ranked, 0, len(annotations))
	for _, ann := range annotations {
		if ann == nil || ann.Entity == nil || ann.Entity.Description == "" {
			continue
		}
		var confidence float32
		if len(ann.Segments) > 0 && ann.Segments[0] != nil {
			confidence = ann.Segments[0].Confidence
		}
		all = append(all, ranked{name: ann.Entity.Description, confidence: confidence})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].confidence > all[j].confidence })
	if len(all) > limit {
		all = all[:limit]
	}

	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.name
	}
	return names
}

func joinTranscripts(transcriptions []*vipb.SpeechTranscription) string {
	var b strings.Builder
	for _, tr := range transcriptions {
		if tr == nil {
			continue
		}
		for _, alt := range tr.Alternatives {
			if alt == nil {
				continue
			}
			text := strings.TrimSpace(alt.Transcript)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// videoDuration reads the processed segment's end offset. Some responses
// omit the segment; the last shot then ends at the end of the video.
func videoDuration(ar *vipb.VideoAnnotationResults) float64 {
	if ar.Segment != nil && ar.Segment.EndTimeOffset != nil {
		return secondsOf(ar.Segment.EndTimeOffset)
	}

	var last float64
	for _, shot := range ar.ShotAnnotations {
		if shot == nil {
			continue
		}
		if end := secondsOf(shot.EndTimeOffset); end > last {
			last = end
		}
	}
	return last
}

func secondsOf(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}
