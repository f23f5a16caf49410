package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happycall-qa/happycall/internal/errors"
)

func TestCircuitBreakerTransitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute}, "test", quietLogger())
	cb.now = func() time.Time { return now }

	fail := func(context.Context) error { return errors.NewStd("fail") }
	ok := func(context.Context) error { return nil }
	ctx := context.Background()

	for range 3 {
		require.Error(t, cb.Call(ctx, fail))
	}
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, 3, cb.Failures())

	assert.ErrorIs(t, cb.Call(ctx, ok), ErrCircuitOpen)

	now = now.Add(time.Minute)
	require.Error(t, cb.Call(ctx, fail))
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens")

	now = now.Add(time.Minute)
	require.NoError(t, cb.Call(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute}, "test", quietLogger())
	err := cb.Call(context.Background(), func(context.Context) error { return context.Canceled })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}

func TestCircuitStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}
