package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnlimited(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 50; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	require.Equal(t, 50, l.Used())
}

func TestBudgetExhausted(t *testing.T) {
	l := New(2, 0)
	require.NoError(t, l.Acquire(context.Background()))
	require.NoError(t, l.Acquire(context.Background()))
	require.ErrorIs(t, l.Acquire(context.Background()), ErrBudgetExhausted)
	require.Equal(t, 2, l.Used())
}

func TestPacingHonoursContext(t *testing.T) {
	l := New(0, time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, l.Acquire(ctx))
}

func TestCancelledWaitKeepsBudget(t *testing.T) {
	l := New(2, time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, l.Acquire(ctx))
	require.Equal(t, 1, l.Used())
}
