package api

import (
	"context"
	"net/http"
)

// orEmpty keeps empty listings encoding as [] instead of null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// handleWorkExperience serves GET /api/v1/work-experience.
func (s *Server) handleWorkExperience(w http.ResponseWriter, r *http.Request) {
	listEndpoint(s, w, r, "work experience", func(ctx context.Context) (any, error) {
		items, err := s.cfg.Portfolio.ListWorkExperiences(ctx)
		return orEmpty(items), err
	})
}

// handleProjects serves GET /api/v1/projects.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	listEndpoint(s, w, r, "projects", func(ctx context.Context) (any, error) {
		items, err := s.cfg.Portfolio.ListProjects(ctx)
		return orEmpty(items), err
	})
}

// handleCertifications serves GET /api/v1/certifications.
func (s *Server) handleCertifications(w http.ResponseWriter, r *http.Request) {
	listEndpoint(s, w, r, "certifications", func(ctx context.Context) (any, error) {
		items, err := s.cfg.Portfolio.ListCertifications(ctx)
		return orEmpty(items), err
	})
}

// handlePosts serves GET /api/v1/posts. Only published posts exist at
// the store level; drafts never reach this endpoint.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	listEndpoint(s, w, r, "posts", func(ctx context.Context) (any, error) {
		items, err := s.cfg.Portfolio.ListPublishedPosts(ctx)
		return orEmpty(items), err
	})
}

// handleKnowledgeRefresh serves POST /api/v1/knowledge/refresh. Content
// updates land in the database out of band; this endpoint rebuilds the
// chat corpus so the assistant picks them up without a restart.
func (s *Server) handleKnowledgeRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Knowledge.Refresh(r.Context()); err != nil {
		s.cfg.Logger.Error("knowledge refresh failed", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "refresh_failed", "could not rebuild the knowledge base")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// listEndpoint is the shared shape of the content listing handlers.
func listEndpoint(s *Server, w http.ResponseWriter, r *http.Request, name string, load func(context.Context) (any, error)) {
	items, err := load(r.Context())
	if err != nil {
		s.cfg.Logger.Error("listing failed",
			"resource", name,
			"error", err,
			"request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "storage_error", "could not load "+name)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
