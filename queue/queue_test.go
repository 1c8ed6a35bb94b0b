package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmotta/cargobot/core"
)

func TestQueuePreservesOrder(t *testing.T) {
	q := New()

	var mu sync.Mutex
	var got []string
	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, msg core.Message) error {
		mu.Lock()
		got = append(got, msg.Body)
		mu.Unlock()
		return nil
	}))

	var want []string
	for i := 0; i < 50; i++ {
		body := fmt.Sprintf("msg-%d", i)
		want = append(want, body)
		require.NoError(t, q.Enqueue(core.NewMessage("+551199", body)))
	}

	q.Close()
	assert.Equal(t, want, got)
	assert.Zero(t, q.Size())
}

func TestQueueReportsFailureOnceAndContinues(t *testing.T) {
	var mu sync.Mutex
	var failed []string
	q := New(func(o *Options) {
		o.OnError = func(msg core.Message, err error) {
			mu.Lock()
			failed = append(failed, msg.Body)
			mu.Unlock()
		}
	})

	var processed []string
	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, msg core.Message) error {
		mu.Lock()
		processed = append(processed, msg.Body)
		mu.Unlock()
		if msg.Body == "bad" {
			return errors.New("boom")
		}
		return nil
	}))

	require.NoError(t, q.Enqueue(core.NewMessage("a", "ok-1")))
	require.NoError(t, q.Enqueue(core.NewMessage("a", "bad")))
	require.NoError(t, q.Enqueue(core.NewMessage("a", "ok-2")))

	q.Close()
	assert.Equal(t, []string{"ok-1", "bad", "ok-2"}, processed)
	assert.Equal(t, []string{"bad"}, failed)
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	q := New()
	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, msg core.Message) error {
		return nil
	}))
	q.Close()

	err := q.Enqueue(core.NewMessage("a", "late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueueStartTwice(t *testing.T) {
	q := New()
	handler := func(ctx context.Context, msg core.Message) error { return nil }
	require.NoError(t, q.Start(context.Background(), handler))
	assert.ErrorIs(t, q.Start(context.Background(), handler), ErrStarted)
	q.Close()
}

func TestQueueCloseDrainsBacklog(t *testing.T) {
	q := New()

	release := make(chan struct{})
	var mu sync.Mutex
	var processed int
	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, msg core.Message) error {
		<-release
		mu.Lock()
		processed++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(core.NewMessage("a", "pending")))
	}
	close(release)
	q.Close()

	assert.Equal(t, 5, processed)
}

func TestQueueStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := New()
	require.NoError(t, q.Start(ctx, func(ctx context.Context, msg core.Message) error {
		return nil
	}))

	cancel()

	// The consumer parks until cancellation propagates; Close must not hang.
	done := make(chan struct{})
	go func() {
		q.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after cancellation")
	}
}

func TestQueueHandlerPanicDoesNotKillConsumer(t *testing.T) {
	var mu sync.Mutex
	var failed []core.Message
	var errs []error
	q := New(func(o *Options) {
		o.OnError = func(msg core.Message, err error) {
			mu.Lock()
			failed = append(failed, msg)
			errs = append(errs, err)
			mu.Unlock()
		}
	})
	var processed []string
	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, msg core.Message) error {
		if msg.Body == "panic" {
			panic("boom")
		}
		mu.Lock()
		processed = append(processed, msg.Body)
		mu.Unlock()
		return nil
	}))

	require.NoError(t, q.Enqueue(core.NewMessage("a", "panic")))
	require.NoError(t, q.Enqueue(core.NewMessage("a", "after")))
	q.Close()

	assert.Equal(t, []string{"after"}, processed)
	require.Len(t, failed, 1)
	assert.Equal(t, "panic", failed[0].Body)
	assert.ErrorContains(t, errs[0], "boom")
}
