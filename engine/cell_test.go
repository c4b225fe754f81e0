package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/engine"
	"github.com/tsawler/pdflayer/engine/enginetest"
)

func TestCell_InitialisesOnceForConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fake := &enginetest.Engine{}

	cell := engine.NewCell(func(ctx context.Context) (engine.Engine, error) {
		calls.Add(1)
		<-release
		return fake, nil
	})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]engine.Engine, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cell.Get(context.Background())
		}(i)
	}

	// Let every caller reach the wait before initialisation finishes.
	time.Sleep(20 * time.Millisecond)
	assert.False(t, cell.Ready())
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, fake, results[i])
	}
	assert.True(t, cell.Ready())

	e, err := cell.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, e)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCell_FailedInitIsRetried(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	fake := &enginetest.Engine{}

	cell := engine.NewCell(func(ctx context.Context) (engine.Engine, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return fake, nil
	})

	_, err := cell.Get(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, cell.Ready())

	e, err := cell.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, e)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCell_CancelledWaiterDoesNotAbortInit(t *testing.T) {
	release := make(chan struct{})
	fake := &enginetest.Engine{}
	cell := engine.NewCell(func(ctx context.Context) (engine.Engine, error) {
		<-release
		return fake, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cell.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	e, err := cell.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, e)
}

func TestCell_NoInit(t *testing.T) {
	cell := engine.NewCell(nil)
	_, err := cell.Get(context.Background())
	assert.ErrorIs(t, err, engine.ErrNoEngine)

	fake := &enginetest.Engine{}
	cell.Set(fake)
	e, err := cell.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fake, e)

	require.NoError(t, cell.Close())
	assert.False(t, cell.Ready())
}
