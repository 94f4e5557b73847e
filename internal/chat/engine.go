package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/maximotodev/portfolio-api/internal/rag"
)

// FallbackErrorMessage is the user-facing text emitted when generation
// fails. It is the entire visible response in that case.
const FallbackErrorMessage = "I'm sorry, but the AI model is currently experiencing issues."

// ErrGeneration wraps any generation failure. Callers emit the fallback
// message and must not surface the underlying provider error to users.
var ErrGeneration = errors.New("generation failed")

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChunkFunc receives one text delta. Returning an error stops the
// stream; the generation call observes it as a callback failure.
type ChunkFunc func(text string) error

// Engine is the response synthesizer. For each question it runs
// retrieval, picks the mode-specific instruction template, and streams
// the model's answer through a caller-supplied callback.
//
// Engine is safe for concurrent use.
type Engine struct {
	g           *genkit.Genkit
	kb          *rag.Service
	modelName   string
	retryConfig RetryConfig
	rateLimiter *rate.Limiter // proactive rate limiting, nil disables
	logger      *slog.Logger
}

// EngineConfig configures a new Engine.
type EngineConfig struct {
	// ModelName is the provider-qualified model, e.g. "googleai/gemini-2.5-flash".
	ModelName string

	// Retry overrides DefaultRetryConfig when non-zero.
	Retry RetryConfig

	// RequestsPerSecond caps outbound generation calls. Zero disables
	// the limiter.
	RequestsPerSecond float64
}

// NewEngine creates an Engine over the given knowledge base service.
func NewEngine(g *genkit.Genkit, kb *rag.Service, cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxRetries == 0 && retryCfg.InitialInterval == 0 {
		retryCfg = DefaultRetryConfig()
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}
	return &Engine{
		g:           g,
		kb:          kb,
		modelName:   cfg.ModelName,
		retryConfig: retryCfg,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// Stream answers a question. Retrieval always completes before
// generation starts; retrieval failures degrade to marker context inside
// the knowledge base service and still produce a graceful answer.
//
// onChunk is invoked for every text delta in order. On generation
// failure Stream returns an error wrapping ErrGeneration and the caller
// must present FallbackErrorMessage as the entire response. Stream stops
// promptly when ctx is canceled (caller disconnect).
func (e *Engine) Stream(ctx context.Context, question string, history []Message, onChunk ChunkFunc) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("question must not be empty")
	}

	start := time.Now()
	res := e.kb.Retrieve(ctx, question)
	e.logger.Debug("retrieval complete",
		"mode", string(res.Mode),
		"category", string(res.Category),
		"documents", len(res.Documents),
		"elapsed", time.Since(start))

	messages := make([]*ai.Message, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case "assistant", "model":
			messages = append(messages, ai.NewModelTextMessage(turn.Content))
		default:
			messages = append(messages, ai.NewUserTextMessage(turn.Content))
		}
	}
	messages = append(messages, ai.NewUserTextMessage(buildUserPrompt(question, res.Documents)))

	if err := e.generateWithRetry(ctx, systemPromptFor(res.Mode), messages, onChunk); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Caller went away; nothing to present.
			return ctxErr
		}
		e.logger.Error("generation failed", "error", err)
		return fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return nil
}

// generateWithRetry runs the streaming generation call with exponential
// backoff. Retrying is only safe while no chunk has been delivered;
// after first output a failure is final, otherwise the caller would see
// duplicated text.
func (e *Engine) generateWithRetry(ctx context.Context, systemPrompt string, messages []*ai.Message, onChunk ChunkFunc) error {
	var lastErr error
	delay := e.retryConfig.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= e.retryConfig.MaxRetries; attempt++ {
		if e.rateLimiter != nil {
			if err := e.rateLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		delivered := false
		_, err := genkit.Generate(ctx, e.g,
			ai.WithModelName(e.modelName),
			ai.WithSystem(systemPrompt),
			ai.WithMessages(messages...),
			ai.WithStreaming(func(cbCtx context.Context, chunk *ai.ModelResponseChunk) error {
				text := chunk.Text()
				if text == "" {
					return nil
				}
				delivered = true
				return onChunk(text)
			}),
		)
		if err == nil {
			e.logger.Debug("generation complete",
				"attempts", attempt+1,
				"elapsed", time.Since(start))
			return nil
		}

		lastErr = err
		if delivered || !retryableError(err) || attempt == e.retryConfig.MaxRetries {
			break
		}

		e.logger.Debug("retrying generation",
			"attempt", attempt+1,
			"delay", delay,
			"error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, e.retryConfig.MaxInterval)
		}
	}

	return lastErr
}
