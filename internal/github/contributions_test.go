package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maximotodev/portfolio-api/internal/cache"
	"github.com/maximotodev/portfolio-api/internal/testutil"
)

// graphqlFixture is a minimal contribution calendar response.
const graphqlFixture = `{
	"data": {
		"user": {
			"contributionsCollection": {
				"contributionCalendar": {
					"totalContributions": 1234,
					"weeks": [
						{"contributionDays": [
							{"contributionCount": 3, "date": "2026-08-30", "weekday": 0, "color": "#40c463"},
							{"contributionCount": 0, "date": "2026-08-31", "weekday": 1, "color": "#ebedf0"}
						]}
					]
				}
			}
		}
	}
}`

func newContribFetcher(graphqlURL string) *Fetcher {
	return &Fetcher{
		http:       &http.Client{},
		graphqlURL: graphqlURL,
		authed:     true,
		cache:      cache.NewMemory(),
		username:   "maximotodev",
		contribTTL: time.Hour,
		logger:     testutil.DiscardLogger(),
	}
}

// TestContributionsFetch tests calendar parsing and query variables
func TestContributionsFetch(t *testing.T) {
	var gotBody struct {
		Query     string            `json:"query"`
		Variables map[string]string `json:"variables"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(graphqlFixture))
	}))
	defer srv.Close()

	f := newContribFetcher(srv.URL)
	cal, err := f.Contributions(context.Background())
	if err != nil {
		t.Fatalf("Contributions() failed: %v", err)
	}

	if cal.TotalContributions != 1234 {
		t.Errorf("TotalContributions = %d, want 1234", cal.TotalContributions)
	}
	if len(cal.Weeks) != 1 || len(cal.Weeks[0].ContributionDays) != 2 {
		t.Fatalf("unexpected calendar shape: %+v", cal.Weeks)
	}
	if day := cal.Weeks[0].ContributionDays[0]; day.ContributionCount != 3 || day.Color != "#40c463" {
		t.Errorf("unexpected first day: %+v", day)
	}

	if gotBody.Variables["userName"] != "maximotodev" {
		t.Errorf("query userName = %q, want maximotodev", gotBody.Variables["userName"])
	}
	if !strings.Contains(gotBody.Query, "contributionCalendar") {
		t.Error("query should request the contribution calendar")
	}
}

// TestContributionsMemoized tests that a second call is served from cache
func TestContributionsMemoized(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte(graphqlFixture))
	}))
	defer srv.Close()

	f := newContribFetcher(srv.URL)
	for i := 0; i < 2; i++ {
		if _, err := f.Contributions(context.Background()); err != nil {
			t.Fatalf("Contributions() call %d failed: %v", i+1, err)
		}
	}
	if hits != 1 {
		t.Errorf("GraphQL endpoint hit %d times, want 1 (cached)", hits)
	}
}

// TestContributionsNoToken tests that the fetch is refused without a token
func TestContributionsNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("the GraphQL endpoint must not be hit without a token")
	}))
	defer srv.Close()

	f := newContribFetcher(srv.URL)
	f.authed = false

	if _, err := f.Contributions(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Contributions() error = %v, want ErrNoToken", err)
	}
}

// TestContributionsGraphQLError tests that in-band GraphQL errors surface
func TestContributionsGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "Could not resolve to a User"}]}`))
	}))
	defer srv.Close()

	f := newContribFetcher(srv.URL)
	_, err := f.Contributions(context.Background())
	if err == nil {
		t.Fatal("expected error from GraphQL errors array, got nil")
	}
	if !strings.Contains(err.Error(), "Could not resolve") {
		t.Errorf("error should carry the GraphQL message, got %v", err)
	}
}
