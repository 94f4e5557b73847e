package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximotodev/portfolio-api/internal/chat"
	ghstats "github.com/maximotodev/portfolio-api/internal/github"
	"github.com/maximotodev/portfolio-api/internal/knowledge"
	"github.com/maximotodev/portfolio-api/internal/log"
	"github.com/maximotodev/portfolio-api/internal/portfolio"
)

// fakePortfolio implements PortfolioReader with injectable data and errors.
type fakePortfolio struct {
	experiences    []portfolio.WorkExperience
	projects       []portfolio.Project
	certifications []portfolio.Certification
	posts          []portfolio.Post
	err            error
}

func (f *fakePortfolio) ListWorkExperiences(context.Context) ([]portfolio.WorkExperience, error) {
	return f.experiences, f.err
}

func (f *fakePortfolio) ListProjects(context.Context) ([]portfolio.Project, error) {
	return f.projects, f.err
}

func (f *fakePortfolio) ListCertifications(context.Context) ([]portfolio.Certification, error) {
	return f.certifications, f.err
}

func (f *fakePortfolio) ListPublishedPosts(context.Context) ([]portfolio.Post, error) {
	return f.posts, f.err
}

// fakeStreamer implements ChatStreamer via a function field.
type fakeStreamer struct {
	stream func(ctx context.Context, question string, history []chat.Message, onChunk chat.ChunkFunc) error
}

func (f *fakeStreamer) Stream(ctx context.Context, question string, history []chat.Message, onChunk chat.ChunkFunc) error {
	return f.stream(ctx, question, history, onChunk)
}

// fakeKnowledge implements KnowledgeService.
type fakeKnowledge struct {
	refreshErr error
	refreshed  int
	docs       []knowledge.Document
}

func (f *fakeKnowledge) Refresh(context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func (f *fakeKnowledge) Documents(context.Context) ([]knowledge.Document, error) {
	return f.docs, nil
}

// fakeStats implements StatsProvider.
type fakeStats struct {
	stats    *ghstats.Stats
	calendar *ghstats.ContributionCalendar
	err      error
}

func (f *fakeStats) Stats(context.Context) (*ghstats.Stats, error) {
	return f.stats, f.err
}

func (f *fakeStats) Contributions(context.Context) (*ghstats.ContributionCalendar, error) {
	return f.calendar, f.err
}

func newTestServer(cfg ServerConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return NewServer(cfg).Handler()
}

func TestListEndpoints(t *testing.T) {
	t.Parallel()

	started := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	store := &fakePortfolio{
		experiences: []portfolio.WorkExperience{
			{ID: 1, JobTitle: "Engineer", Company: "Acme", StartDate: started},
		},
		projects: []portfolio.Project{
			{ID: 1, Title: "Tip Jar", Technologies: "Go, Bitcoin"},
			{ID: 2, Title: "Sats Tracker", Technologies: "Python"},
		},
	}
	handler := newTestServer(ServerConfig{Portfolio: store})

	t.Run("projects returns data in order", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var got []portfolio.Project
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Tip Jar", got[0].Title)
		assert.Equal(t, "Sats Tracker", got[1].Title)
	})

	t.Run("work experience returns data", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/work-experience", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got []portfolio.WorkExperience
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Acme", got[0].Company)
	})

	t.Run("empty listing encodes as array not null", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"/api/v1/certifications", "/api/v1/posts"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code, path)
			assert.JSONEq(t, "[]", w.Body.String(), path)
		}
	})
}

func TestListEndpointStoreError(t *testing.T) {
	t.Parallel()

	store := &fakePortfolio{err: errors.New("connection refused")}
	handler := newTestServer(ServerConfig{Portfolio: store})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "storage_error", resp.Error)
	// Internal error details must not leak to the client.
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestGitHubStatsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns aggregated stats", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{
			GitHub: &fakeStats{stats: &ghstats.Stats{Username: "maximotodev", Followers: 42, PublicRepos: 7, TotalStars: 18}},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/github-stats", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got ghstats.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 42, got.Followers)
		assert.Equal(t, 18, got.TotalStars)
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{
			GitHub: &fakeStats{err: errors.New("rate limited")},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/github-stats", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "github_unavailable", resp.Error)
	})
}

func TestGitHubContributionsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns the calendar", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{
			GitHub: &fakeStats{calendar: &ghstats.ContributionCalendar{
				TotalContributions: 1234,
				Weeks: []ghstats.ContributionWeek{
					{ContributionDays: []ghstats.ContributionDay{
						{ContributionCount: 3, Date: "2026-08-30", Color: "#40c463"},
					}},
				},
			}},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/github-contributions", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got ghstats.ContributionCalendar
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 1234, got.TotalContributions)
		require.Len(t, got.Weeks, 1)
		assert.Equal(t, 3, got.Weeks[0].ContributionDays[0].ContributionCount)
	})

	t.Run("missing token maps to 502", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{
			GitHub: &fakeStats{err: ghstats.ErrNoToken},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/github-contributions", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "github_unavailable", resp.Error)
	})
}

func TestKnowledgeRefreshEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		kb := &fakeKnowledge{}
		handler := newTestServer(ServerConfig{Knowledge: kb})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/knowledge/refresh", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, kb.refreshed)
		assert.JSONEq(t, `{"status":"refreshed"}`, w.Body.String())
	})

	t.Run("rebuild failure", func(t *testing.T) {
		t.Parallel()

		kb := &fakeKnowledge{refreshErr: errors.New("embedder down")}
		handler := newTestServer(ServerConfig{Knowledge: kb})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/knowledge/refresh", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "refresh_failed", resp.Error)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("health returns 200", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("ready returns 503 without a store", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{})
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("ready returns 503 when the database is down", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{Portfolio: &fakePortfolio{err: errors.New("dial tcp: refused")}})
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("ready returns 200 when the store answers", func(t *testing.T) {
		t.Parallel()

		handler := newTestServer(ServerConfig{Portfolio: &fakePortfolio{}})
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", w.Body.String())
	})
}

func TestUnknownRouteReturns404(t *testing.T) {
	t.Parallel()

	handler := newTestServer(ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
