package api

import "net/http"

// handleHealth is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady is a readiness probe endpoint.
// Returns 200 OK if the content store answers queries.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Portfolio == nil {
		http.Error(w, "portfolio store not configured", http.StatusServiceUnavailable)
		return
	}
	if _, err := s.cfg.Portfolio.ListProjects(r.Context()); err != nil {
		s.cfg.Logger.Error("readiness check failed", "error", err)
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
