package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolRunsTasks(t *testing.T) {
	p := New(2, 8, time.Second, zap.NewNop())
	defer p.Close(time.Second)

	var done sync.WaitGroup
	var ran int64
	for i := 0; i < 5; i++ {
		done.Add(1)
		err := p.Submit(func(ctx context.Context) {
			atomic.AddInt64(&ran, 1)
			done.Done()
		})
		require.NoError(t, err)
	}

	done.Wait()
	assert.Equal(t, int64(5), atomic.LoadInt64(&ran))
}

func TestPoolQueueFull(t *testing.T) {
	p := New(1, 1, time.Second, zap.NewNop())
	defer p.Close(time.Second)

	block := make(chan struct{})
	defer close(block)

	// Occupy the single worker, then fill the single queue slot.
	require.NoError(t, p.Submit(func(ctx context.Context) { <-block }))

	var err error
	// The worker may not have picked up the first task yet, so saturation
	// can take one extra submission.
	for i := 0; i < 3; i++ {
		err = p.Submit(func(ctx context.Context) { <-block })
		if err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPoolClosedRejectsSubmit(t *testing.T) {
	p := New(1, 4, time.Second, zap.NewNop())
	p.Close(time.Second)

	err := p.Submit(func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolPanicIsolation(t *testing.T) {
	p := New(1, 4, time.Second, zap.NewNop())
	defer p.Close(time.Second)

	require.NoError(t, p.Submit(func(ctx context.Context) { panic("task blew up") }))

	// The worker must survive and run the next task.
	done := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestPoolCloseDrainsQueuedTasks(t *testing.T) {
	p := New(1, 8, time.Second, zap.NewNop())

	var ran int64
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(func(ctx context.Context) {
			atomic.AddInt64(&ran, 1)
		}))
	}

	p.Close(2 * time.Second)
	assert.Equal(t, int64(4), atomic.LoadInt64(&ran))
}

func TestPoolTaskTimeout(t *testing.T) {
	p := New(1, 4, 20*time.Millisecond, zap.NewNop())
	defer p.Close(time.Second)

	expired := make(chan bool, 1)
	require.NoError(t, p.Submit(func(ctx context.Context) {
		select {
		case <-ctx.Done():
			expired <- true
		case <-time.After(2 * time.Second):
			expired <- false
		}
	}))

	select {
	case ok := <-expired:
		assert.True(t, ok, "task context must carry the pool timeout")
	case <-time.After(3 * time.Second):
		t.Fatal("task never observed its deadline")
	}
}
