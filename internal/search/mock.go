package search

import (
	"context"
	"fmt"
	"time"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name    string
	results []Result
}

// NewMockProvider creates a new mock search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []Result{
			{
				URL:     "https://example.com/trends/short-form-hooks",
				Title:   "Creators lean into three-second hooks",
				Snippet: "Short-form audiences decide within the first seconds whether to keep watching.",
				Domain:  "example.com",
				Source:  "Mock",
				Rank:    1,
			},
			{
				URL:     "https://test.org/trends/day-in-the-life",
				Title:   "Day-in-the-life formats keep climbing",
				Snippet: "Behind-the-scenes storytelling outperforms polished promos across platforms.",
				Domain:  "test.org",
				Source:  "Mock",
				Rank:    2,
			},
			{
				URL:     "https://demo.net/trends/remix-audio",
				Title:   "Remixed audio drives discovery",
				Snippet: "Tracks resurface weeks after release once a challenge format attaches to them.",
				Domain:  "demo.net",
				Source:  "Mock",
				Rank:    3,
			},
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns mock search results
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	// Simulate some processing time
	time.Sleep(100 * time.Millisecond)

	// Limit results based on config
	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}

	// Create copies of results with query-specific modifications
	results := make([]Result, maxResults)
	for i := 0; i < maxResults; i++ {
		result := m.results[i]
		// Modify title to include query for demonstration
		result.Title = fmt.Sprintf("%s (for query: %s)", result.Title, query)
		results[i] = result
	}

	return results, nil
}

// SetResults allows customization of mock results for testing
func (m *MockProvider) SetResults(results []Result) {
	m.results = results
}

// SetName allows customization of provider name for testing
func (m *MockProvider) SetName(name string) {
	m.name = name
}
