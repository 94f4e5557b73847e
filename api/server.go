// Package api provides the HTTP REST API for the portfolio backend.
//
// Endpoints:
//
//	GET  /api/v1/work-experience    work history, newest first
//	GET  /api/v1/projects           all projects
//	GET  /api/v1/certifications     all certifications
//	GET  /api/v1/posts              published blog posts
//	GET  /api/v1/github-stats       cached GitHub profile stats
//	GET  /api/v1/github-contributions  cached contribution calendar
//	POST /api/v1/chat/stream        career assistant (SSE stream)
//	POST /api/v1/knowledge/refresh  rebuild the chat knowledge base
//	GET  /health                    liveness probe
//	GET  /ready                     readiness probe
//
// File structure:
//   - server.go: route registration and handler wiring
//   - middleware.go: recovery, request ID, logging, CORS
//   - chat.go: SSE streaming chat endpoint
//   - portfolio.go: content listing endpoints
//   - stats.go: GitHub stats and contributions endpoints
//   - health.go: probes
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"

	"github.com/maximotodev/portfolio-api/internal/chat"
	ghstats "github.com/maximotodev/portfolio-api/internal/github"
	"github.com/maximotodev/portfolio-api/internal/knowledge"
	"github.com/maximotodev/portfolio-api/internal/log"
	"github.com/maximotodev/portfolio-api/internal/portfolio"
)

// PortfolioReader lists portfolio content. *portfolio.Store satisfies it.
type PortfolioReader interface {
	ListWorkExperiences(ctx context.Context) ([]portfolio.WorkExperience, error)
	ListProjects(ctx context.Context) ([]portfolio.Project, error)
	ListCertifications(ctx context.Context) ([]portfolio.Certification, error)
	ListPublishedPosts(ctx context.Context) ([]portfolio.Post, error)
}

// ChatStreamer streams assistant answers. *chat.Engine satisfies it.
type ChatStreamer interface {
	Stream(ctx context.Context, question string, history []chat.Message, onChunk chat.ChunkFunc) error
}

// KnowledgeService exposes knowledge base maintenance. *rag.Service
// satisfies it.
type KnowledgeService interface {
	Refresh(ctx context.Context) error
	Documents(ctx context.Context) ([]knowledge.Document, error)
}

// StatsProvider fetches GitHub profile data. *github.Fetcher satisfies it.
type StatsProvider interface {
	Stats(ctx context.Context) (*ghstats.Stats, error)
	Contributions(ctx context.Context) (*ghstats.ContributionCalendar, error)
}

// ServerConfig wires the server's dependencies.
type ServerConfig struct {
	Logger      log.Logger
	Portfolio   PortfolioReader
	Chat        ChatStreamer
	Knowledge   KnowledgeService
	GitHub      StatsProvider
	CORSOrigins []string
}

// Server is the portfolio REST API.
type Server struct {
	cfg ServerConfig
	mux *http.ServeMux
}

// NewServer creates the server and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{cfg: cfg, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/v1/work-experience", s.handleWorkExperience)
	s.mux.HandleFunc("GET /api/v1/projects", s.handleProjects)
	s.mux.HandleFunc("GET /api/v1/certifications", s.handleCertifications)
	s.mux.HandleFunc("GET /api/v1/posts", s.handlePosts)
	s.mux.HandleFunc("GET /api/v1/github-stats", s.handleGitHubStats)
	s.mux.HandleFunc("GET /api/v1/github-contributions", s.handleGitHubContributions)
	s.mux.HandleFunc("POST /api/v1/chat/stream", s.handleChatStream)
	s.mux.HandleFunc("POST /api/v1/knowledge/refresh", s.handleKnowledgeRefresh)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)

	return s
}

// Handler returns the full handler with middleware applied.
// Order: recovery → request ID → logging → CORS → routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.cfg.Logger),
		requestIDMiddleware,
		loggingMiddleware(s.cfg.Logger),
		corsMiddleware(s.cfg.CORSOrigins),
	)
}
