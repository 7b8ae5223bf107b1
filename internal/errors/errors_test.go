package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
		retry    bool
	}{
		{"config invalid", ErrCodeConfigInvalid, CategoryConfig, SeverityFatal, false},
		{"no providers", ErrCodeNoProviders, CategoryConfig, SeverityFatal, false},
		{"cache read", ErrCodeCacheRead, CategoryCache, SeverityWarning, false},
		{"provider timeout", ErrCodeProviderTimeout, CategoryProvider, SeverityWarning, true},
		{"provider unavailable", ErrCodeProviderUnavailable, CategoryProvider, SeverityWarning, true},
		{"invalid input", ErrCodeInvalidInput, CategoryValidation, SeverityError, false},
		{"internal", ErrCodeInternal, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retry, err.Retryable)
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeProviderResponse, cause)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, cause))
}

func TestError_IsMatchesByCode(t *testing.T) {
	a := New(ErrCodeConfigInvalid, "a", nil)
	b := New(ErrCodeConfigInvalid, "b", nil)
	c := New(ErrCodeInternal, "c", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail(t *testing.T) {
	err := ConfigError("bad weight", nil).WithDetail("field", "scoring.recency_weight")
	assert.Equal(t, "scoring.recency_weight", err.Details["field"])
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ConfigError("bad", nil)))
	assert.False(t, IsFatal(CacheError("miss", nil)))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestProviderError_Error(t *testing.T) {
	err := NewProviderError("brave", "server error", 500, nil)
	assert.Contains(t, err.Error(), "brave")
	assert.Contains(t, err.Error(), "HTTP 500")

	noStatus := NewProviderError("rss", "parse failure", 0, nil)
	assert.NotContains(t, noStatus.Error(), "HTTP")
}

func TestAsProviderError_ExtractsFromChain(t *testing.T) {
	inner := NewProviderError("serpapi", "quota exceeded", 429, nil)
	wrapped := fmt.Errorf("fetch: %w", inner)

	got := AsProviderError("serpapi", wrapped)
	assert.Equal(t, 429, got.StatusCode)
	assert.Equal(t, "quota exceeded", got.Message)
}

func TestAsProviderError_SynthesizesForPlainError(t *testing.T) {
	got := AsProviderError("duckduckgo", errors.New("connection refused"))
	assert.Equal(t, "duckduckgo", got.Provider)
	assert.Equal(t, 0, got.StatusCode)
}

func TestRetryWithResult_SucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0}

	attempts := 0
	got, err := RetryWithResult(context.Background(), cfg, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithResult_ExhaustsRetries(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0}

	attempts := 0
	_, err := RetryWithResult(context.Background(), cfg, func() (int, error) {
		attempts++
		return 0, errors.New("always fails")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial + 2 retries
	assert.Contains(t, err.Error(), "failed after 2 retries")
}

func TestRetryWithResult_ContextCancellation(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 10, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2.0}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryWithResult(ctx, cfg, func() (int, error) {
		return 0, errors.New("never retried")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
