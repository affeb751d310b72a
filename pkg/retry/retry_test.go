package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokarr/appointpro/pkg/retry"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("serialization failure")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(3), func() error {
		calls++
		return errors.New("down")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestDo_StopReturnsImmediately(t *testing.T) {
	sentinel := errors.New("slot taken")
	calls := 0
	err := retry.Do(context.Background(), fastConfig(5), func() error {
		calls++
		return retry.Stop(sentinel)
	})

	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithLog_ReportsAttempts(t *testing.T) {
	var attempts []int
	_ = retry.DoWithLog(context.Background(), fastConfig(3), "PostgreSQL", func() error {
		return errors.New("refused")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(3), func() error { return nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
