package writequeue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSerializesPerKey(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), "session-a", func() error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 1, m.QueueCount())
}

func TestExecuteCancelledContext(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := m.Execute(ctx, "k", func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestCleanupAndShutdown(t *testing.T) {
	m := New(&Config{IdleTimeout: time.Hour}, nil)
	require.NoError(t, m.Execute(context.Background(), "a", func() error { return nil }))
	require.NoError(t, m.Execute(context.Background(), "b", func() error { return nil }))
	assert.Equal(t, 2, m.QueueCount())

	assert.Equal(t, 0, m.doCleanup(time.Now()))
	assert.Equal(t, 2, m.doCleanup(time.Now().Add(2*time.Hour)))

	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.IsClosed())
	assert.ErrorIs(t, m.Execute(context.Background(), "a", func() error { return nil }), ErrWriteQueueClosed)
}
