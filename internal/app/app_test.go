package app

import (
	"context"
	"testing"

	"github.com/maximotodev/portfolio-api/internal/cache"
	"github.com/maximotodev/portfolio-api/internal/config"
	"github.com/maximotodev/portfolio-api/internal/log"
)

func TestAppClose(t *testing.T) {
	tests := []struct {
		name string
		app  *App
	}{
		{name: "zero value app", app: &App{}},
		{name: "with cache only", app: &App{Cache: cache.NewMemory(), logger: log.NewNop()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.app.Close(); err != nil {
				t.Errorf("Close() error = %v, want nil", err)
			}
		})
	}
}

func TestProvideCacheDefaultsToMemory(t *testing.T) {
	cfg := &config.Config{}

	c, err := provideCache(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("provideCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if _, ok := c.(*cache.Memory); !ok {
		t.Errorf("provideCache() = %T, want *cache.Memory", c)
	}
}
