package search

import (
	"context"
	"strings"
	"time"
)

// Provider is the unified interface for trend signal providers. Web search
// engines and platform-native sources (trending charts, community feeds)
// implement the same shape so the radar can treat them interchangeably.
type Provider interface {
	// Search performs a search with configuration
	Search(ctx context.Context, query string, config Config) ([]Result, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults int           // Maximum number of results to return
	SinceTime  time.Duration // Only return results newer than this duration
	Language   string        // Language preference (e.g., "en", "es")
	News       bool          // Restrict to news indexes where the provider has one
}

// Result represents a unified search result
type Result struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Domain      string    `json:"domain"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Source      string    `json:"source"` // Provider-specific source identifier
	Rank        int       `json:"rank"`   // Position in search results
}

// ProviderType represents the type of search provider
type ProviderType string

const (
	ProviderTypeDuckDuckGo ProviderType = "duckduckgo"
	ProviderTypeSerpAPI    ProviderType = "serpapi"
	ProviderTypeYouTube    ProviderType = "youtube"
	ProviderTypeReddit     ProviderType = "reddit"
	ProviderTypeMock       ProviderType = "mock"
)

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a search provider of the specified type. The config
// map carries provider-specific settings keyed the way the application
// configuration exposes them.
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeDuckDuckGo:
		provider := NewDuckDuckGoProvider()
		if raw := config["rate_limit"]; raw != "" {
			if d, err := time.ParseDuration(raw); err == nil {
				provider.rateLimit = d
			}
		}
		return provider, nil
	case ProviderTypeSerpAPI:
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewSerpAPIProvider(apiKey), nil
	case ProviderTypeYouTube:
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewYouTubeProvider(apiKey, config["region"])
	case ProviderTypeReddit:
		return NewRedditProvider(splitSubreddits(config["subreddits"]))
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeDuckDuckGo,
		ProviderTypeSerpAPI,
		ProviderTypeYouTube,
		ProviderTypeReddit,
		ProviderTypeMock,
	}
}

// splitSubreddits parses the comma-joined subreddit list from configuration.
func splitSubreddits(raw string) []string {
	var subreddits []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			subreddits = append(subreddits, trimmed)
		}
	}
	return subreddits
}
