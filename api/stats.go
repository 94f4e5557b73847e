package api

import "net/http"

// handleGitHubStats serves GET /api/v1/github-stats. Results come from
// cache when it holds a fresh entry; otherwise the GitHub API is hit.
func (s *Server) handleGitHubStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cfg.GitHub.Stats(r.Context())
	if err != nil {
		s.cfg.Logger.Error("github stats fetch failed",
			"error", err,
			"request_id", RequestID(r.Context()))
		writeError(w, http.StatusBadGateway, "github_unavailable", "could not fetch GitHub stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleGitHubContributions serves GET /api/v1/github-contributions,
// the past year of contribution calendar data. The GraphQL API behind
// it needs a token, so an unconfigured deployment answers 502 like any
// other upstream failure.
func (s *Server) handleGitHubContributions(w http.ResponseWriter, r *http.Request) {
	calendar, err := s.cfg.GitHub.Contributions(r.Context())
	if err != nil {
		s.cfg.Logger.Error("github contributions fetch failed",
			"error", err,
			"request_id", RequestID(r.Context()))
		writeError(w, http.StatusBadGateway, "github_unavailable", "could not fetch contribution data")
		return
	}
	writeJSON(w, http.StatusOK, calendar)
}
