package llm

import (
	"errors"
	"testing"
)

func TestRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limit", err: errors.New("messages API status 429: rate limit"), want: true},
		{name: "overloaded", err: errors.New("messages API status 529: Overloaded"), want: true},
		{name: "server error", err: errors.New("messages API status 503: unavailable"), want: true},
		{name: "network timeout", err: errors.New("send request: dial tcp: i/o timeout"), want: true},
		{name: "connection reset", err: errors.New("send request: connection reset by peer"), want: true},
		{name: "auth failure", err: errors.New("messages API status 401: invalid x-api-key"), want: false},
		{name: "bad request", err: errors.New("messages API status 400: invalid tool schema"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultRetryConfig()
	if cfg.MaxRetries <= 0 {
		t.Errorf("MaxRetries = %d, want > 0", cfg.MaxRetries)
	}
	if cfg.InitialInterval <= 0 || cfg.MaxInterval < cfg.InitialInterval {
		t.Errorf("backoff intervals invalid: initial=%v max=%v", cfg.InitialInterval, cfg.MaxInterval)
	}
}
