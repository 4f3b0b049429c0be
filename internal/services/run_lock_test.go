package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/services"
)

func TestRunLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".kb", "ai-docs", "run.lock")
	ctx := context.Background()

	first := services.NewRunLock(path)
	require.NoError(t, first.Acquire(ctx, 0))

	second := services.NewRunLock(path)
	start := time.Now()
	err := second.Acquire(ctx, 150*time.Millisecond)
	assert.ErrorIs(t, err, services.ErrRunInProgress)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire(ctx, 0))
	require.NoError(t, second.Release())
}

func TestRunLock_ContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")
	holder := services.NewRunLock(path)
	require.NoError(t, holder.Acquire(context.Background(), 0))
	defer holder.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := services.NewRunLock(path).Acquire(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
