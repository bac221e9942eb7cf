package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatalAPIError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil error", nil, false},
		{"connection reset", errors.New("connection reset by peer"), false},
		{"credit balance", errors.New("insufficient credit balance"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"quota exceeded", errors.New("quota exceeded for model"), true},
		{"billing issue", errors.New("billing account inactive"), true},
		{"invalid api key", errors.New("Invalid API key"), true},
		{"authentication failed", errors.New("authentication failed"), true},
		{"unauthorized", errors.New("unauthorized request"), true},
		{"401 status", errors.New("HTTP 401: not allowed"), true},
		{"403 status", errors.New("HTTP 403: forbidden"), true},
		{"wrapped", fmt.Errorf("enrich mike: %w", errors.New("credit balance too low")), true},
		{"404 not fatal", errors.New("HTTP 404: model not found"), false},
		{"timeout not fatal", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, isFatalAPIError(tt.err))
		})
	}
}

func TestWrapFatalError(t *testing.T) {
	t.Run("fatal", func(t *testing.T) {
		cause := errors.New("invalid api key provided")
		wrapped := wrapFatalError(cause)
		assert.ErrorIs(t, wrapped, ErrFatalAPI)
		assert.ErrorIs(t, wrapped, cause)
	})

	t.Run("transient passes through", func(t *testing.T) {
		cause := errors.New("network timeout")
		assert.Same(t, cause, wrapFatalError(cause))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, wrapFatalError(nil))
	})
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, int64(12), tokenCount(map[string]any{"PromptTokens": 12}, "PromptTokens", "InputTokens"))
	assert.Equal(t, int64(7), tokenCount(map[string]any{"InputTokens": float64(7)}, "PromptTokens", "InputTokens"))
	assert.Equal(t, int64(3), tokenCount(map[string]any{"input_tokens": int32(3)}, "input_tokens"))
	assert.Zero(t, tokenCount(nil, "PromptTokens"))
	assert.Zero(t, tokenCount(map[string]any{"PromptTokens": "12"}, "PromptTokens"))
}
