package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/firebase/genkit/go/ai"

	"github.com/maximotodev/portfolio-api/internal/knowledge"
)

// ServiceConfig tunes the knowledge base service. Zero values fall back
// to the package defaults.
type ServiceConfig struct {
	TopK         int
	Threshold    float64
	EmbedTimeout time.Duration
}

// Service owns the knowledge base: it builds the corpus lazily on first
// use, keeps the embedding index immutable once built, and answers
// retrieval requests against it.
//
// Service is safe for concurrent use. Concurrent first requests trigger
// exactly one build; later callers reuse the result. Refresh swaps in a
// freshly built index atomically without blocking readers.
type Service struct {
	assembler *knowledge.Assembler
	embedder  ai.Embedder
	cfg       ServiceConfig
	logger    *slog.Logger

	buildMu sync.Mutex
	index   atomic.Pointer[Index]
}

// NewService creates a Service. The index is not built until the first
// retrieval or an explicit Refresh.
func NewService(assembler *knowledge.Assembler, embedder ai.Embedder, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		assembler: assembler,
		embedder:  embedder,
		cfg:       cfg,
		logger:    logger,
	}
}

// Retrieve returns context documents and a response mode for the
// question, building the knowledge base first if needed. Build or
// search failures degrade to marker context; Retrieve never fails.
func (s *Service) Retrieve(ctx context.Context, question string) Result {
	ix, err := s.ensureIndex(ctx)
	if err != nil {
		s.logger.Error("knowledge base unavailable", "error", err)
		if category, ok := ClassifyIntent(question); ok {
			// Structured callers get the empty-array-for-no-data path.
			return Result{Documents: []knowledge.Document{}, Mode: ModeStructured, Category: category}
		}
		return Result{
			Documents: []knowledge.Document{markerDocument(RetrievalErrorMarker)},
			Mode:      ModeConversational,
		}
	}

	retriever := NewRetriever(ix, s.cfg.TopK, s.cfg.Threshold, s.cfg.EmbedTimeout, s.logger)
	return retriever.Retrieve(ctx, question)
}

// Documents returns the current corpus, building it first if needed.
func (s *Service) Documents(ctx context.Context) ([]knowledge.Document, error) {
	ix, err := s.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Documents(), nil
}

// Refresh rebuilds the corpus and index from current source data and
// swaps the result in atomically. In-flight retrievals keep reading the
// old index until they finish.
func (s *Service) Refresh(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	ix, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.index.Store(ix)
	s.logger.Info("knowledge base refreshed", "documents", ix.Len())
	return nil
}

// ensureIndex returns the built index, performing the one-time lazy
// build under a mutex with a double check so concurrent first requests
// race safely.
func (s *Service) ensureIndex(ctx context.Context) (*Index, error) {
	if ix := s.index.Load(); ix != nil {
		return ix, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if ix := s.index.Load(); ix != nil {
		return ix, nil
	}

	ix, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.index.Store(ix)
	s.logger.Info("knowledge base built", "documents", ix.Len())
	return ix, nil
}

// build assembles the corpus and embeds it into a fresh index.
// Callers must hold buildMu.
func (s *Service) build(ctx context.Context) (*Index, error) {
	docs, err := s.assembler.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("assembling corpus: %w", err)
	}

	ix := NewIndex(s.embedder)
	if err := ix.Build(ctx, docs); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	return ix, nil
}
