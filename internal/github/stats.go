// Package github fetches public profile data for the portfolio:
// follower count, public repository count, total stars and the
// contribution calendar. Results are memoized through the cache layer
// because the data changes slowly and the unauthenticated GitHub API
// rate limit is small.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/maximotodev/portfolio-api/internal/cache"
)

// DefaultTimeout bounds one GitHub API request.
const DefaultTimeout = 10 * time.Second

// DefaultCacheTTL is how long fetched stats stay memoized.
const DefaultCacheTTL = time.Hour

// Stats is the public profile summary served by the API.
type Stats struct {
	Username    string `json:"username"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
	TotalStars  int    `json:"total_stars"`
}

// usersService is the slice of the go-github Users API the fetcher
// needs. *gh.UsersService satisfies it.
type usersService interface {
	Get(ctx context.Context, user string) (*gh.User, *gh.Response, error)
}

// reposService is the slice of the go-github Repositories API the
// fetcher needs. *gh.RepositoriesService satisfies it.
type reposService interface {
	ListByUser(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error)
}

// Fetcher retrieves and memoizes GitHub stats for one username.
type Fetcher struct {
	users      usersService
	repos      reposService
	http       *http.Client
	graphqlURL string
	authed     bool
	cache      cache.Cache
	username   string
	ttl        time.Duration
	contribTTL time.Duration
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for username. When the GITHUB_API_TOKEN
// environment variable is set, requests are authenticated, which raises
// the rate limit considerably.
func NewFetcher(username string, store cache.Cache, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	token := os.Getenv("GITHUB_API_TOKEN")
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = DefaultTimeout

	client := gh.NewClient(httpClient)
	return &Fetcher{
		users:      client.Users,
		repos:      client.Repositories,
		http:       httpClient,
		graphqlURL: defaultGraphQLURL,
		authed:     token != "",
		cache:      store,
		username:   username,
		ttl:        DefaultCacheTTL,
		contribTTL: DefaultContributionsTTL,
		logger:     logger,
	}
}

// SetCacheTTL overrides how long fetched stats stay memoized.
func (f *Fetcher) SetCacheTTL(d time.Duration) {
	if d > 0 {
		f.ttl = d
	}
}

// Stats returns the profile summary, from cache when fresh.
func (f *Fetcher) Stats(ctx context.Context) (*Stats, error) {
	key := "github:stats:" + f.username

	if data, err := f.cache.Get(ctx, key); err == nil {
		var cached Stats
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return &cached, nil
		}
		f.logger.Warn("discarding malformed cached stats", "key", key)
	} else if !errors.Is(err, cache.ErrMiss) {
		// A broken cache should not take the endpoint down.
		f.logger.Warn("cache read failed, fetching directly", "error", err)
	}

	stats, err := f.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(stats); jsonErr == nil {
		if cacheErr := f.cache.Set(ctx, key, data, f.ttl); cacheErr != nil {
			f.logger.Warn("caching stats failed", "error", cacheErr)
		}
	}
	return stats, nil
}

// fetch pulls the user profile and walks every public repository page
// to sum stargazers.
func (f *Fetcher) fetch(ctx context.Context) (*Stats, error) {
	user, _, err := f.users.Get(ctx, f.username)
	if err != nil {
		return nil, fmt.Errorf("fetching user %q: %w", f.username, err)
	}

	totalStars := 0
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		repos, resp, err := f.repos.ListByUser(ctx, f.username, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories for %q: %w", f.username, err)
		}
		for _, repo := range repos {
			totalStars += repo.GetStargazersCount()
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return &Stats{
		Username:    f.username,
		Followers:   user.GetFollowers(),
		PublicRepos: user.GetPublicRepos(),
		TotalStars:  totalStars,
	}, nil
}
