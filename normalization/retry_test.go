package normalization

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("write row: %w", errTransient)
		}
		return nil
	}, fastRetryConfig(), RetryOn(errTransient))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	permanent := errors.New("constraint failed")
	err := Retry(context.Background(), func() error {
		calls++
		return permanent
	}, fastRetryConfig(), RetryOn(errTransient))

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return errors.New("database is locked")
	}, fastRetryConfig(), nil)

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetryConfig()
	cfg.InitialDelay = time.Hour
	err := Retry(ctx, func() error { return errTransient }, cfg, RetryOn(errTransient))

	assert.ErrorIs(t, err, errTransient)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("SQLITE_BUSY"), true},
		{errors.New("UNIQUE constraint failed"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsRetryableError(tt.err), "%v", tt.err)
	}
}
