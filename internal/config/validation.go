package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Validate checks the configuration for errors. All failures wrap a
// sentinel error so callers can use errors.Is().
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (supported: gemini, ollama, openai)", ErrInvalidProvider, c.Provider)
	}

	if err := c.validateAPIKey(); err != nil {
		return err
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name cannot be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model cannot be empty", ErrInvalidEmbedderModel)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.RetrievalTopK < 1 || c.RetrievalTopK > 50 {
		return fmt.Errorf("%w: %d (must be 1-50)", ErrInvalidRetrievalTopK, c.RetrievalTopK)
	}
	if c.RetrievalThreshold < 0 || c.RetrievalThreshold >= 1 {
		return fmt.Errorf("%w: %g (must be in [0, 1))", ErrInvalidRetrievalThreshold, c.RetrievalThreshold)
	}
	if c.ChatRequestsPerSecond < 0 {
		return fmt.Errorf("%w: %g (must be >= 0; 0 disables the limiter)", ErrInvalidChatRate, c.ChatRequestsPerSecond)
	}

	if u, err := url.Parse(c.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q (must be an absolute URL)", ErrInvalidFrontendURL, c.FrontendURL)
	}

	return nil
}

// validateAPIKey checks that the API key required by the provider is set.
// Ollama is local and needs no key.
func (c *Config) validateAPIKey() error {
	switch c.Provider {
	case ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable not set", ErrMissingAPIKey)
		}
	}
	return nil
}
