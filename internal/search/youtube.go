package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"reelsmith/internal/logger"
)

// YouTubeProvider implements Provider against the YouTube Data API. Instead
// of searching the web it reads the platform's own trending chart, so the
// query argument only ends up in logs.
type YouTubeProvider struct {
	service *youtube.Service
	region  string
}

// NewYouTubeProvider creates a provider reading the trending chart for the
// given region (ISO 3166-1 alpha-2, defaults to US).
func NewYouTubeProvider(apiKey, region string) (*YouTubeProvider, error) {
	service, err := youtube.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	if region == "" {
		region = "US"
	}
	return &YouTubeProvider{service: service, region: region}, nil
}

// GetName returns the name of this provider
func (y *YouTubeProvider) GetName() string {
	return "YouTube Trending"
}

// Search returns the current most-popular videos for the configured region
func (y *YouTubeProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	resp, err := y.service.Videos.List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		RegionCode(y.region).
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube trending chart: %w", err)
	}

	var results []Result
	for _, video := range resp.Items {
		if video.Snippet == nil {
			continue
		}
		result := Result{
			URL:     "https://www.youtube.com/watch?v=" + video.Id,
			Title:   video.Snippet.Title,
			Snippet: trendingVideoSnippet(video),
			Domain:  "youtube.com",
			Source:  "YouTube",
			Rank:    len(results) + 1,
		}
		if published, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			result.PublishedAt = published
		}
		results = append(results, result)
	}

	logger.Info("YouTube trending fetch completed", "query", query, "region", y.region, "results_found", len(results))

	return results, nil
}

// trendingVideoSnippet condenses channel, reach, and description into one
// line the synthesis prompt can digest.
func trendingVideoSnippet(video *youtube.Video) string {
	var parts []string
	if video.Snippet.ChannelTitle != "" {
		parts = append(parts, "By "+video.Snippet.ChannelTitle)
	}
	if video.Statistics != nil && video.Statistics.ViewCount > 0 {
		parts = append(parts, fmt.Sprintf("%d views", video.Statistics.ViewCount))
	}
	if description := cleanText(video.Snippet.Description); description != "" {
		if runes := []rune(description); len(runes) > 160 {
			description = string(runes[:160]) + "..."
		}
		parts = append(parts, description)
	}
	return strings.Join(parts, ". ")
}
