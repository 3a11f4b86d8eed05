package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRoutesJobsByType(t *testing.T) {
	router := NewRouter()
	done := make(chan Job, 1)
	router.Handle("booking.confirmed", func(_ context.Context, job Job) error {
		done <- job
		return nil
	})

	queue := NewQueue("notifications", router.Dispatch, QueueConfig{Workers: 2})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-1", Type: "booking.confirmed", Metadata: map[string]string{"traceparent": "x"}}))

	select {
	case job := <-done:
		assert.Equal(t, "job-1", job.ID)
		assert.False(t, job.Enqueued.IsZero())
		assert.Equal(t, "x", job.Metadata["traceparent"])
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	queue := NewQueue("notifications", func(_ context.Context, _ Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("provider unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-2", Type: "booking.confirmed"}))

	select {
	case <-done:
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	queue := NewQueue("notifications", func(context.Context, Job) error { return nil }, QueueConfig{})

	assert.Error(t, queue.Enqueue(Job{ID: "job-3"}))
}

func TestRouterUnknownType(t *testing.T) {
	assert.Error(t, NewRouter().Dispatch(context.Background(), Job{Type: "missing"}))
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var handled int32
	release := make(chan struct{})
	queue := NewQueue("notifications", func(_ context.Context, _ Job) error {
		<-release
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	queue.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, queue.Enqueue(Job{ID: id}))
	}
	close(release)
	queue.Stop()

	assert.Equal(t, int32(3), atomic.LoadInt32(&handled))
	assert.ErrorIs(t, queue.Enqueue(Job{ID: "late"}), ErrQueueClosed)
}

func TestQueueSurvivesStartContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	queue := NewQueue("notifications", func(ctx context.Context, _ Job) error {
		done <- ctx.Err()
		return nil
	}, QueueConfig{})
	queue.Start(ctx)
	defer queue.Stop()
	cancel()

	require.NoError(t, queue.Enqueue(Job{ID: "after-signal"}))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRejectsWhenFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	queue := NewQueue("notifications", func(context.Context, Job) error {
		started <- struct{}{}
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	queue.Start(context.Background())
	defer queue.Stop()
	defer close(block)

	require.NoError(t, queue.Enqueue(Job{ID: "running"}))
	<-started
	require.NoError(t, queue.Enqueue(Job{ID: "buffered"}))
	assert.ErrorIs(t, queue.Enqueue(Job{ID: "overflow"}), ErrQueueFull)
}

func TestQueueRecoversPanickingHandler(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	queue := NewQueue("notifications", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			panic("nil notifier")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 1, RetryDelay: 5 * time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-4"}))
	select {
	case <-done:
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("panicking job was not retried")
	}
}

func TestQueueJobTimeout(t *testing.T) {
	done := make(chan error, 1)
	queue := NewQueue("notifications", func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		done <- ctx.Err()
		return nil
	}, QueueConfig{JobTimeout: 20 * time.Millisecond})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "slow"}))
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("job timeout not applied")
	}
}

func TestQueueBackoffDoublesAndCaps(t *testing.T) {
	queue := NewQueue("notifications", nil, QueueConfig{RetryDelay: time.Second})

	assert.Equal(t, time.Second, queue.backoff(1))
	assert.Equal(t, 2*time.Second, queue.backoff(2))
	assert.Equal(t, 8*time.Second, queue.backoff(4))
	assert.Equal(t, time.Minute, queue.backoff(10))
}
