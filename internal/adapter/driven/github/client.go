// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
	"github.com/ericfisherdev/autoreview/internal/domain/port/driven"
)

// repoPageSize is the single page of repositories fetched per mount.
// Repositories beyond it are not shown.
const repoPageSize = 100

// Compile-time interface satisfaction checks.
var (
	_ driven.GitHubClient        = (*Client)(nil)
	_ driven.GitHubClientFactory = (*ClientFactory)(nil)
)

// ClientFactory builds token-bound Clients that share one transport stack:
//  1. httpcache (ETag-based conditional request caching; GitHub responses
//     vary on Authorization, so entries are never served across tokens)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with bearer auth)
type ClientFactory struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClientFactory creates a ClientFactory talking to api.github.com.
func NewClientFactory() *ClientFactory {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	return &ClientFactory{httpClient: rateLimitClient}
}

// NewClientFactoryWithHTTPClient creates a ClientFactory with a custom
// http.Client and base URL. This constructor is intended for testing,
// allowing injection of an httptest server.
func NewClientFactoryWithHTTPClient(httpClient *http.Client, baseURL string) (*ClientFactory, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	return &ClientFactory{httpClient: httpClient, baseURL: u}, nil
}

// ForToken returns a Client authenticated with token.
func (f *ClientFactory) ForToken(token string) driven.GitHubClient {
	return f.Client(token)
}

// Client returns the concrete Client for token.
func (f *ClientFactory) Client(token string) *Client {
	client := gh.NewClient(f.httpClient).WithAuthToken(token)
	if f.baseURL != nil {
		client.BaseURL = f.baseURL
	}
	return &Client{gh: client}
}

// Client implements the driven.GitHubClient port for one bearer token.
type Client struct {
	gh *gh.Client
}

// AuthenticatedUser fetches the account that owns the token. A 401 from
// GitHub is reported as driven.ErrTokenRejected.
func (c *Client) AuthenticatedUser(ctx context.Context) (*model.GitHubUser, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("getting authenticated user: %w", classify(resp, err))
	}

	logRateLimit(resp, "user", 0, 1)

	return &model.GitHubUser{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Email:     user.GetEmail(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ListRepositories returns the first page of the user's repositories of all
// visibilities, most recently updated first. It does not follow pagination.
func (c *Client) ListRepositories(ctx context.Context) ([]model.RemoteRepository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Visibility: "all",
		Sort:       "updated",
		ListOptions: gh.ListOptions{
			PerPage: repoPageSize,
		},
	}

	repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", classify(resp, err))
	}

	logRateLimit(resp, "user/repos", 1, len(repos))

	if resp != nil && resp.NextPage != 0 {
		slog.Debug("repository list truncated to one page", "page_size", repoPageSize)
	}

	result := make([]model.RemoteRepository, 0, len(repos))
	for _, r := range repos {
		result = append(result, mapRepository(r))
	}

	return result, nil
}

// classify maps authentication failures to driven.ErrTokenRejected while
// keeping the original error in the chain.
func classify(resp *gh.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return errors.Join(driven.ErrTokenRejected, err)
	}
	return err
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	// Responses without rate headers leave Rate zeroed.
	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// mapRepository converts a go-github Repository to a domain RemoteRepository.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.RemoteRepository {
	return model.RemoteRepository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Private:     r.GetPrivate(),
		HTMLURL:     r.GetHTMLURL(),
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}
