// Package app provides application initialization and dependency wiring.
//
// App is the container that owns every long-lived component: the database
// pool, the cache, Genkit, the knowledge base service, the chat engine and
// the GitHub stats fetcher. Setup builds them in dependency order; Close
// releases them.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maximotodev/portfolio-api/internal/cache"
	"github.com/maximotodev/portfolio-api/internal/chat"
	"github.com/maximotodev/portfolio-api/internal/config"
	"github.com/maximotodev/portfolio-api/internal/github"
	"github.com/maximotodev/portfolio-api/internal/log"
	"github.com/maximotodev/portfolio-api/internal/portfolio"
	"github.com/maximotodev/portfolio-api/internal/rag"
)

// App is the core application container.
type App struct {
	Config *config.Config

	// Core services
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	DBPool    *pgxpool.Pool
	Cache     cache.Cache
	Portfolio *portfolio.Store
	Knowledge *rag.Service
	Chat      *chat.Engine
	GitHub    *github.Fetcher

	logger log.Logger
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	if a.logger != nil {
		a.logger.Info("shutting down application")
	}

	var firstErr error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.DBPool != nil {
		a.DBPool.Close()
	}
	return firstErr
}
