package chat

import (
	"errors"
	"testing"
)

// TestRetryableError tests transient error classification
func TestRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limit", err: errors.New("429 Too Many Requests"), want: true},
		{name: "quota", err: errors.New("Quota Exceeded for project"), want: true},
		{name: "server error", err: errors.New("upstream returned 503"), want: true},
		{name: "unavailable", err: errors.New("service UNAVAILABLE"), want: true},
		{name: "timeout", err: errors.New("request timeout after 30s"), want: true},
		{name: "connection reset", err: errors.New("read: connection reset by peer"), want: true},
		{name: "auth failure", err: errors.New("401 unauthorized"), want: false},
		{name: "bad request", err: errors.New("invalid model name"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
