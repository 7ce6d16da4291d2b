package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProviderTypeConstants(t *testing.T) {
	expectedTypes := map[ProviderType]string{
		ProviderTypeDuckDuckGo: "duckduckgo",
		ProviderTypeSerpAPI:    "serpapi",
		ProviderTypeYouTube:    "youtube",
		ProviderTypeReddit:     "reddit",
		ProviderTypeMock:       "mock",
	}

	for providerType, expectedValue := range expectedTypes {
		if string(providerType) != expectedValue {
			t.Errorf("Expected %s to be %s, got %s", providerType, expectedValue, string(providerType))
		}
	}
}

func TestConfigCreation(t *testing.T) {
	config := Config{
		MaxResults: 10,
		SinceTime:  24 * time.Hour,
		Language:   "en",
		News:       true,
	}

	if config.MaxResults != 10 {
		t.Errorf("Expected MaxResults to be 10, got %d", config.MaxResults)
	}
	if config.SinceTime != 24*time.Hour {
		t.Errorf("Expected SinceTime to be 24h, got %v", config.SinceTime)
	}
	if config.Language != "en" {
		t.Errorf("Expected Language to be 'en', got %s", config.Language)
	}
	if !config.News {
		t.Error("Expected News to be true")
	}
}

func TestResultCreation(t *testing.T) {
	publishedAt := time.Now()
	result := Result{
		URL:         "https://example.com/article",
		Title:       "Test Article",
		Snippet:     "This is a test snippet",
		Domain:      "example.com",
		PublishedAt: publishedAt,
		Source:      "test",
		Rank:        1,
	}

	if result.URL != "https://example.com/article" {
		t.Errorf("Expected URL to be 'https://example.com/article', got %s", result.URL)
	}
	if result.Title != "Test Article" {
		t.Errorf("Expected Title to be 'Test Article', got %s", result.Title)
	}
	if result.Rank != 1 {
		t.Errorf("Expected Rank to be 1, got %d", result.Rank)
	}
}

func TestNewProviderFactory(t *testing.T) {
	factory := NewProviderFactory()
	if factory == nil {
		t.Error("Expected NewProviderFactory to return non-nil factory")
	}
}

func TestCreateMockProvider(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{}

	provider, err := factory.CreateProvider(ProviderTypeMock, config)
	if err != nil {
		t.Fatalf("Expected no error creating mock provider, got %v", err)
	}

	if provider == nil {
		t.Fatal("Expected non-nil provider")
	}

	if provider.GetName() != "Mock" {
		t.Errorf("Expected provider name to be 'Mock', got %s", provider.GetName())
	}
}

func TestCreateDuckDuckGoProvider(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{}

	provider, err := factory.CreateProvider(ProviderTypeDuckDuckGo, config)
	if err != nil {
		t.Fatalf("Expected no error creating DuckDuckGo provider, got %v", err)
	}

	if provider == nil {
		t.Fatal("Expected non-nil provider")
	}
}

func TestCreateDuckDuckGoProviderRateLimit(t *testing.T) {
	factory := NewProviderFactory()

	provider, err := factory.CreateProvider(ProviderTypeDuckDuckGo, map[string]string{"rate_limit": "5s"})
	if err != nil {
		t.Fatalf("Expected no error creating DuckDuckGo provider, got %v", err)
	}

	ddg, ok := provider.(*DuckDuckGoProvider)
	if !ok {
		t.Fatalf("Expected *DuckDuckGoProvider, got %T", provider)
	}
	if ddg.rateLimit != 5*time.Second {
		t.Errorf("Expected rate limit 5s, got %v", ddg.rateLimit)
	}
}

func TestCreateDuckDuckGoProviderInvalidRateLimit(t *testing.T) {
	factory := NewProviderFactory()

	provider, err := factory.CreateProvider(ProviderTypeDuckDuckGo, map[string]string{"rate_limit": "fast"})
	if err != nil {
		t.Fatalf("Expected no error creating DuckDuckGo provider, got %v", err)
	}

	ddg := provider.(*DuckDuckGoProvider)
	if ddg.rateLimit != 2*time.Second {
		t.Errorf("Expected default rate limit 2s for invalid setting, got %v", ddg.rateLimit)
	}
}

func TestCreateSerpAPIProviderMissingAPIKey(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{}

	provider, err := factory.CreateProvider(ProviderTypeSerpAPI, config)
	if err == nil {
		t.Error("Expected error when creating SerpAPI provider without API key")
	}
	if provider != nil {
		t.Error("Expected nil provider when creation fails")
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCreateSerpAPIProviderSuccess(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"api_key": "test-api-key",
	}

	provider, err := factory.CreateProvider(ProviderTypeSerpAPI, config)
	if err != nil {
		t.Fatalf("Expected no error creating SerpAPI provider, got %v", err)
	}
	if provider == nil {
		t.Fatal("Expected non-nil provider")
	}
}

func TestCreateYouTubeProviderMissingAPIKey(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"region": "US",
	}

	provider, err := factory.CreateProvider(ProviderTypeYouTube, config)
	if err == nil {
		t.Error("Expected error when creating YouTube provider without API key")
	}
	if provider != nil {
		t.Error("Expected nil provider when creation fails")
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCreateYouTubeProviderDefaultRegion(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"api_key": "test-api-key",
	}

	provider, err := factory.CreateProvider(ProviderTypeYouTube, config)
	if err != nil {
		t.Fatalf("Expected no error creating YouTube provider, got %v", err)
	}

	yt, ok := provider.(*YouTubeProvider)
	if !ok {
		t.Fatalf("Expected *YouTubeProvider, got %T", provider)
	}
	if yt.region != "US" {
		t.Errorf("Expected default region US, got %s", yt.region)
	}
}

func TestCreateYouTubeProviderCustomRegion(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"api_key": "test-api-key",
		"region":  "GB",
	}

	provider, err := factory.CreateProvider(ProviderTypeYouTube, config)
	if err != nil {
		t.Fatalf("Expected no error creating YouTube provider, got %v", err)
	}

	yt := provider.(*YouTubeProvider)
	if yt.region != "GB" {
		t.Errorf("Expected region GB, got %s", yt.region)
	}
}

func TestCreateRedditProviderDefaultSubreddits(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{}

	provider, err := factory.CreateProvider(ProviderTypeReddit, config)
	if err != nil {
		t.Fatalf("Expected no error creating Reddit provider, got %v", err)
	}

	rp, ok := provider.(*RedditProvider)
	if !ok {
		t.Fatalf("Expected *RedditProvider, got %T", provider)
	}
	if len(rp.subreddits) != len(defaultSubreddits) {
		t.Errorf("Expected %d default subreddits, got %d", len(defaultSubreddits), len(rp.subreddits))
	}
}

func TestCreateRedditProviderCustomSubreddits(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{
		"subreddits": "NewTubers, Tiktokhelp,, PartneredYoutube",
	}

	provider, err := factory.CreateProvider(ProviderTypeReddit, config)
	if err != nil {
		t.Fatalf("Expected no error creating Reddit provider, got %v", err)
	}

	rp := provider.(*RedditProvider)
	expected := []string{"NewTubers", "Tiktokhelp", "PartneredYoutube"}
	if len(rp.subreddits) != len(expected) {
		t.Fatalf("Expected %d subreddits, got %d", len(expected), len(rp.subreddits))
	}
	for i, subreddit := range expected {
		if rp.subreddits[i] != subreddit {
			t.Errorf("Expected subreddit %d to be %s, got %s", i, subreddit, rp.subreddits[i])
		}
	}
}

func TestCreateUnsupportedProvider(t *testing.T) {
	factory := NewProviderFactory()
	config := map[string]string{}

	provider, err := factory.CreateProvider("unsupported", config)
	if err == nil {
		t.Error("Expected error when creating unsupported provider")
	}
	if provider != nil {
		t.Error("Expected nil provider when creation fails")
	}
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("Expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestGetAvailableProviders(t *testing.T) {
	factory := NewProviderFactory()
	providers := factory.GetAvailableProviders()

	expectedProviders := []ProviderType{
		ProviderTypeDuckDuckGo,
		ProviderTypeSerpAPI,
		ProviderTypeYouTube,
		ProviderTypeReddit,
		ProviderTypeMock,
	}

	if len(providers) != len(expectedProviders) {
		t.Errorf("Expected %d providers, got %d", len(expectedProviders), len(providers))
	}

	// Check that all expected providers are present
	providerMap := make(map[ProviderType]bool)
	for _, provider := range providers {
		providerMap[provider] = true
	}

	for _, expected := range expectedProviders {
		if !providerMap[expected] {
			t.Errorf("Expected provider %s to be in available providers list", expected)
		}
	}
}

func TestErrorsExist(t *testing.T) {
	errs := []error{
		ErrMissingAPIKey,
		ErrUnsupportedProvider,
		ErrNoResults,
		ErrRateLimited,
		ErrProviderUnavailable,
	}

	for _, err := range errs {
		if err == nil {
			t.Error("Expected error to be defined")
		}
		if err.Error() == "" {
			t.Error("Expected error to have non-empty message")
		}
	}
}

func TestMockProviderSearch(t *testing.T) {
	provider := NewMockProvider()
	ctx := context.Background()
	config := Config{
		MaxResults: 2,
		Language:   "en",
	}

	results, err := provider.Search(ctx, "test query", config)
	if err != nil {
		t.Fatalf("Expected no error from mock search, got %v", err)
	}

	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}

	// Check that query is included in title
	for _, result := range results {
		if result.Title == "" {
			t.Error("Expected non-empty title")
		}
		if result.URL == "" {
			t.Error("Expected non-empty URL")
		}
		if result.Snippet == "" {
			t.Error("Expected non-empty snippet")
		}
	}
}

func TestMockProviderCustomization(t *testing.T) {
	provider := NewMockProvider()

	// Test name customization
	provider.SetName("CustomMock")
	if provider.GetName() != "CustomMock" {
		t.Errorf("Expected provider name to be 'CustomMock', got %s", provider.GetName())
	}

	// Test results customization
	customResults := []Result{
		{
			URL:     "https://custom.com/article",
			Title:   "Custom Article",
			Snippet: "Custom snippet",
			Domain:  "custom.com",
			Source:  "Custom",
			Rank:    1,
		},
	}

	provider.SetResults(customResults)

	ctx := context.Background()
	config := Config{MaxResults: 5}

	results, err := provider.Search(ctx, "test", config)
	if err != nil {
		t.Fatalf("Expected no error from mock search, got %v", err)
	}

	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}

	if results[0].Domain != "custom.com" {
		t.Errorf("Expected domain to be 'custom.com', got %s", results[0].Domain)
	}
}

const duckduckgoHTML = `
<div class="results">
  <div class="result results_links results_links_deep web-result">
    <div class="links_main links_deep result__body">
      <h2 class="result__title">
        <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Ftrends&amp;rut=abc123">Creator trends for <b>short-form</b> video</a>
      </h2>
      <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Ftrends&amp;rut=abc123">Short-form video
        keeps   growing across platforms.</a>
    </div>
  </div>
  <div class="result result--ad results_links web-result">
    <div class="links_main links_deep result__body">
      <h2 class="result__title">
        <a rel="nofollow" class="result__a" href="https://ads.example.com/landing">Sponsored: grow faster</a>
      </h2>
      <a class="result__snippet" href="https://ads.example.com/landing">Buy followers now.</a>
    </div>
  </div>
  <div class="result results_links results_links_deep web-result">
    <div class="links_main links_deep result__body">
      <h2 class="result__title">
        <a rel="nofollow" class="result__a" href="https://direct.example.org/post">A direct link result</a>
      </h2>
      <a class="result__snippet" href="https://direct.example.org/post">No redirect wrapper on this one.</a>
    </div>
  </div>
  <div class="result results_links results_links_deep web-result">
    <div class="links_main links_deep result__body">
      <h2 class="result__title">
        <a rel="nofollow" class="result__a" href="/l/?uddg=https%3A%2F%2Fwww.creatorweekly.com%2Fhooks&amp;rut=def456">Hooks that hold attention</a>
      </h2>
      <a class="result__snippet" href="/l/?uddg=https%3A%2F%2Fwww.creatorweekly.com%2Fhooks&amp;rut=def456">Openers tested across a thousand clips.</a>
    </div>
  </div>
</div>`

func TestParseSearchResults(t *testing.T) {
	provider := NewDuckDuckGoProvider()

	results, err := provider.parseSearchResults(duckduckgoHTML, 10)
	if err != nil {
		t.Fatalf("Expected no error parsing results, got %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results (ad skipped), got %d", len(results))
	}

	first := results[0]
	if first.URL != "https://example.com/trends" {
		t.Errorf("Expected redirect URL to be decoded, got %s", first.URL)
	}
	if first.Title != "Creator trends for short-form video" {
		t.Errorf("Expected nested markup flattened in title, got %q", first.Title)
	}
	if first.Snippet != "Short-form video keeps growing across platforms." {
		t.Errorf("Expected whitespace collapsed in snippet, got %q", first.Snippet)
	}
	if first.Domain != "example.com" {
		t.Errorf("Expected domain example.com, got %s", first.Domain)
	}
	if first.Source != "DuckDuckGo" {
		t.Errorf("Expected source DuckDuckGo, got %s", first.Source)
	}
	if first.Rank != 1 {
		t.Errorf("Expected rank 1, got %d", first.Rank)
	}

	if results[1].URL != "https://direct.example.org/post" {
		t.Errorf("Expected direct URL passed through, got %s", results[1].URL)
	}
	if results[2].URL != "https://www.creatorweekly.com/hooks" {
		t.Errorf("Expected relative redirect decoded, got %s", results[2].URL)
	}
	if results[2].Domain != "creatorweekly.com" {
		t.Errorf("Expected www. stripped from domain, got %s", results[2].Domain)
	}
	if results[2].Rank != 3 {
		t.Errorf("Expected ranks to skip the ad, got %d", results[2].Rank)
	}
}

func TestParseSearchResultsCapsAtMax(t *testing.T) {
	provider := NewDuckDuckGoProvider()

	results, err := provider.parseSearchResults(duckduckgoHTML, 2)
	if err != nil {
		t.Fatalf("Expected no error parsing results, got %v", err)
	}

	if len(results) != 2 {
		t.Errorf("Expected 2 results with maxResults=2, got %d", len(results))
	}
}

func TestParseSearchResultsEmptyDocument(t *testing.T) {
	provider := NewDuckDuckGoProvider()

	results, err := provider.parseSearchResults("<html><body>No results.</body></html>", 10)
	if err != nil {
		t.Fatalf("Expected no error parsing empty document, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestExtractFinalURL(t *testing.T) {
	provider := NewDuckDuckGoProvider()

	testCases := map[string]string{
		"/l/?uddg=https%3A%2F%2Fexample.com%2Fa&rut=x":           "https://example.com/a",
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fb": "https://example.com/b",
		"https://plain.example.com/article":                      "https://plain.example.com/article",
		"/relative/path":                                         "",
		"/l/?rut=onlytracking":                                   "",
	}

	for input, expected := range testCases {
		if got := provider.extractFinalURL(input); got != expected {
			t.Errorf("extractFinalURL(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestCleanText(t *testing.T) {
	testCases := map[string]string{
		"  leading and trailing  ":      "leading and trailing",
		"internal\n\nnewlines\tand tab": "internal newlines and tab",
		"":                              "",
		"already clean":                 "already clean",
	}

	for input, expected := range testCases {
		if got := cleanText(input); got != expected {
			t.Errorf("cleanText(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestSerpAPIBuildParams(t *testing.T) {
	provider := NewSerpAPIProvider("test-api-key")

	params := provider.buildParams("creator trends", Config{MaxResults: 20, SinceTime: 24 * time.Hour})
	if params.Get("q") != "creator trends" {
		t.Errorf("Expected query to be set, got %s", params.Get("q"))
	}
	if params.Get("engine") != "google" {
		t.Errorf("Expected engine google, got %s", params.Get("engine"))
	}
	if params.Get("api_key") != "test-api-key" {
		t.Errorf("Expected api_key to be set, got %s", params.Get("api_key"))
	}
	if params.Get("num") != "20" {
		t.Errorf("Expected num 20, got %s", params.Get("num"))
	}
	if params.Get("tbs") != "qdr:d" {
		t.Errorf("Expected day time filter, got %s", params.Get("tbs"))
	}
	if params.Get("tbm") != "" {
		t.Errorf("Expected no vertical for a regular search, got %s", params.Get("tbm"))
	}
}

func TestSerpAPIBuildParamsNews(t *testing.T) {
	provider := NewSerpAPIProvider("test-api-key")

	params := provider.buildParams("viral content", Config{MaxResults: 10, News: true, SinceTime: 7 * 24 * time.Hour})
	if params.Get("tbm") != "nws" {
		t.Errorf("Expected news vertical, got %s", params.Get("tbm"))
	}
	if params.Get("tbs") != "qdr:w" {
		t.Errorf("Expected week time filter, got %s", params.Get("tbs"))
	}
}

func TestSplitSubreddits(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"NewTubers", 1},
		{"NewTubers,Tiktokhelp", 2},
		{" NewTubers , , Tiktokhelp ", 2},
	}

	for _, tc := range testCases {
		if got := splitSubreddits(tc.input); len(got) != tc.expected {
			t.Errorf("splitSubreddits(%q) returned %d entries, expected %d", tc.input, len(got), tc.expected)
		}
	}
}

func TestMockProviderWithContext(t *testing.T) {
	provider := NewMockProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	config := Config{
		MaxResults: 1,
		Language:   "en",
	}

	results, err := provider.Search(ctx, "test query", config)
	if err != nil {
		t.Fatalf("Expected no error from mock search with context, got %v", err)
	}

	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestConfigDefaults(t *testing.T) {
	// Test zero-value config
	var config Config
	if config.MaxResults != 0 {
		t.Error("Expected default MaxResults to be 0")
	}
	if config.SinceTime != 0 {
		t.Error("Expected default SinceTime to be 0")
	}
	if config.Language != "" {
		t.Error("Expected default Language to be empty")
	}
	if config.News {
		t.Error("Expected default News to be false")
	}
}
