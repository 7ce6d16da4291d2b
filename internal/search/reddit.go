package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"reelsmith/internal/logger"
)

// defaultSubreddits are creator communities with steady trend chatter.
var defaultSubreddits = []string{"NewTubers", "SocialMediaMarketing", "Tiktokhelp"}

// RedditProvider implements Provider by reading the week's top posts from
// creator subreddits. What creators complain about and celebrate is a trend
// signal in its own right, so the query argument is not used for filtering.
type RedditProvider struct {
	client     *reddit.Client
	subreddits []string
}

// NewRedditProvider creates a read-only Reddit provider. An empty subreddit
// list falls back to the default creator communities.
func NewRedditProvider(subreddits []string) (*RedditProvider, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Reddit client: %w", err)
	}
	if len(subreddits) == 0 {
		subreddits = defaultSubreddits
	}
	return &RedditProvider{client: client, subreddits: subreddits}, nil
}

// GetName returns the name of this provider
func (r *RedditProvider) GetName() string {
	return "Reddit"
}

// Search returns the top posts of the week across the configured subreddits
func (r *RedditProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	perSubreddit := config.MaxResults
	if perSubreddit <= 0 {
		perSubreddit = 10
	}
	// Spread the budget so one busy community does not drown out the rest.
	if len(r.subreddits) > 1 {
		perSubreddit = perSubreddit/len(r.subreddits) + 1
	}

	var results []Result
	var failures []string
	for _, subreddit := range r.subreddits {
		posts, _, err := r.client.Subreddit.TopPosts(ctx, subreddit, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: perSubreddit},
			Time:        "week",
		})
		if err != nil {
			// One missing or private subreddit should not sink the rest.
			logger.Warn("Reddit subreddit fetch failed", "subreddit", subreddit, "error", err.Error())
			failures = append(failures, fmt.Sprintf("r/%s: %v", subreddit, err))
			continue
		}
		for _, post := range posts {
			results = append(results, redditResult(post, len(results)+1))
		}
	}

	if len(results) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, strings.Join(failures, "; "))
	}

	if config.MaxResults > 0 && len(results) > config.MaxResults {
		results = results[:config.MaxResults]
	}

	logger.Info("Reddit top posts fetch completed", "query", query, "subreddits", len(r.subreddits), "results_found", len(results))

	return results, nil
}

// redditResult converts a post into the unified result shape
func redditResult(post *reddit.Post, rank int) Result {
	result := Result{
		URL:     "https://www.reddit.com" + post.Permalink,
		Title:   post.Title,
		Snippet: postSnippet(post),
		Domain:  "reddit.com",
		Source:  "Reddit r/" + post.SubredditName,
		Rank:    rank,
	}
	if post.Created != nil {
		result.PublishedAt = post.Created.Time
	}
	return result
}

// postSnippet prefers the self-text body; link posts carry no body, so the
// comment count stands in as a proxy for how much discussion they drew.
func postSnippet(post *reddit.Post) string {
	body := cleanText(post.Body)
	if runes := []rune(body); len(runes) > 200 {
		body = string(runes[:200]) + "..."
	}
	if body == "" {
		return fmt.Sprintf("%d comments this week", post.NumberOfComments)
	}
	return body
}
