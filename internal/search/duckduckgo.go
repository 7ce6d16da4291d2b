package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reelsmith/internal/logger"
)

// DuckDuckGoProvider implements the Provider interface using DuckDuckGo.
// It needs no API key, which makes it the fallback when nothing else is
// configured.
type DuckDuckGoProvider struct {
	client    *http.Client
	userAgent string
	rateLimit time.Duration
	lastCall  time.Time
}

// NewDuckDuckGoProvider creates a new DuckDuckGo search provider
func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		rateLimit: 2 * time.Second, // Be respectful with rate limiting
	}
}

// GetName returns the name of this provider
func (d *DuckDuckGoProvider) GetName() string {
	return "DuckDuckGo"
}

// Search performs a search using DuckDuckGo and returns results
func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	// Respect rate limiting
	if elapsed := time.Since(d.lastCall); elapsed < d.rateLimit {
		time.Sleep(d.rateLimit - elapsed)
	}
	d.lastCall = time.Now()

	// Build search URL
	searchURL := d.buildSearchURL(query, config)

	// Create request with context
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")

	// Execute request
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status: %d", resp.StatusCode)
	}

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for CAPTCHA or blocking
	bodyStr := string(body)
	if strings.Contains(bodyStr, "captcha") || strings.Contains(bodyStr, "Captcha") || strings.Contains(bodyStr, "blocked") {
		logger.Debug("DuckDuckGo CAPTCHA detected", "query", query)
		return nil, fmt.Errorf("%w: DuckDuckGo served a CAPTCHA challenge", ErrProviderUnavailable)
	}

	// Parse results from HTML
	results, err := d.parseSearchResults(bodyStr, config.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	logger.Info("DuckDuckGo search completed", "query", query, "results_found", len(results))

	return results, nil
}

// buildSearchURL constructs the DuckDuckGo search URL with parameters
func (d *DuckDuckGoProvider) buildSearchURL(query string, config Config) string {
	baseURL := "https://html.duckduckgo.com/html/"
	params := url.Values{}

	// Add time filter if specified
	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours() / 24)
		switch {
		case days <= 1:
			params.Set("df", "d") // Past day
		case days <= 7:
			params.Set("df", "w") // Past week
		case days <= 30:
			params.Set("df", "m") // Past month
		case days <= 365:
			params.Set("df", "y") // Past year
		}
	}

	params.Set("q", query)
	params.Set("b", "0")      // Start from first result
	params.Set("kl", "us-en") // Language/region
	params.Set("s", "0")      // Safe search off

	return baseURL + "?" + params.Encode()
}

// parseSearchResults extracts search results from DuckDuckGo HTML response
func (d *DuckDuckGoProvider) parseSearchResults(html string, maxResults int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var results []Result
	doc.Find("div.result").Each(func(i int, s *goquery.Selection) {
		if maxResults > 0 && len(results) >= maxResults {
			return
		}
		// Skip sponsored entries
		if s.HasClass("result--ad") {
			return
		}

		anchor := s.Find("a.result__a").First()
		rawURL, ok := anchor.Attr("href")
		if !ok {
			return
		}

		title := cleanText(anchor.Text())
		if title == "" {
			return
		}

		// Decode URL (DuckDuckGo uses redirect URLs)
		finalURL := d.extractFinalURL(rawURL)
		if finalURL == "" {
			return
		}

		snippet := cleanText(s.Find(".result__snippet").First().Text())

		results = append(results, Result{
			URL:     finalURL,
			Title:   title,
			Snippet: snippet,
			Domain:  d.extractDomain(finalURL),
			Source:  "DuckDuckGo",
			Rank:    len(results) + 1,
		})
	})

	return results, nil
}

// extractFinalURL extracts the actual URL from DuckDuckGo's redirect URL
func (d *DuckDuckGoProvider) extractFinalURL(redirectURL string) string {
	// DuckDuckGo uses URLs like: /l/?uddg=https%3A//example.com/...&rut=...
	if strings.HasPrefix(redirectURL, "/l/?") || strings.HasPrefix(redirectURL, "//duckduckgo.com/l/?") {
		parsed, err := url.Parse(redirectURL)
		if err != nil {
			return ""
		}

		uddg := parsed.Query().Get("uddg")
		if uddg != "" {
			decoded, err := url.QueryUnescape(uddg)
			if err != nil {
				return ""
			}
			return decoded
		}
	}

	// If it's already a full URL, return as-is
	if strings.HasPrefix(redirectURL, "http") {
		return redirectURL
	}

	return ""
}

// extractDomain extracts the domain name from a URL
func (d *DuckDuckGoProvider) extractDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	domain := parsed.Hostname()
	// Remove www. prefix
	domain = strings.TrimPrefix(domain, "www.")

	return domain
}

// cleanText collapses runs of whitespace left over from HTML extraction
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
