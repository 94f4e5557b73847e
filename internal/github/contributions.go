package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// DefaultContributionsTTL is how long the contribution calendar stays
// memoized. The calendar only gains one cell per day, so it can be
// cached far longer than the profile stats.
const DefaultContributionsTTL = 6 * time.Hour

// ErrNoToken indicates the contribution calendar cannot be fetched
// because the GraphQL API requires authentication.
var ErrNoToken = errors.New("GITHUB_API_TOKEN not set, contribution data requires authentication")

// ContributionDay is one cell of the contribution calendar.
type ContributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
	Weekday           int    `json:"weekday"`
	Color             string `json:"color"`
}

// ContributionWeek is one column of the contribution calendar.
type ContributionWeek struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// ContributionCalendar is the past year of contribution activity,
// shaped like the GitHub profile heatmap.
type ContributionCalendar struct {
	TotalContributions int                `json:"totalContributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}

// contributionsQuery pulls the contribution calendar for one user over
// a date range. The REST API has no equivalent, so this is the one
// place the GraphQL endpoint is used.
const contributionsQuery = `
query($userName: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $userName) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            weekday
            color
          }
        }
      }
    }
  }
}`

// Contributions returns the past year of contribution activity, from
// cache when fresh. Returns ErrNoToken when no API token is configured.
func (f *Fetcher) Contributions(ctx context.Context) (*ContributionCalendar, error) {
	if !f.authed {
		return nil, ErrNoToken
	}

	key := "github:contributions:" + f.username

	if data, err := f.cache.Get(ctx, key); err == nil {
		var cached ContributionCalendar
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return &cached, nil
		}
		f.logger.Warn("discarding malformed cached contributions", "key", key)
	}

	calendar, err := f.fetchContributions(ctx)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(calendar); jsonErr == nil {
		if cacheErr := f.cache.Set(ctx, key, data, f.contribTTL); cacheErr != nil {
			f.logger.Warn("caching contributions failed", "error", cacheErr)
		}
	}
	return calendar, nil
}

// fetchContributions runs the GraphQL query over the trailing 365 days.
func (f *Fetcher) fetchContributions(ctx context.Context) (*ContributionCalendar, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -365)

	body, err := json.Marshal(map[string]any{
		"query": contributionsQuery,
		"variables": map[string]string{
			"userName": f.username,
			"from":     from.Format(time.RFC3339),
			"to":       to.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding contributions query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building contributions request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching contributions for %q: %w", f.username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching contributions for %q: unexpected status %s", f.username, resp.Status)
	}

	var out struct {
		Data struct {
			User struct {
				ContributionsCollection struct {
					ContributionCalendar ContributionCalendar `json:"contributionCalendar"`
				} `json:"contributionsCollection"`
			} `json:"user"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding contributions response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("contributions query for %q: %s", f.username, out.Errors[0].Message)
	}

	calendar := out.Data.User.ContributionsCollection.ContributionCalendar
	return &calendar, nil
}
