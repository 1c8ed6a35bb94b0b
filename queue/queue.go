// Package queue provides the inbound message queue. Messages are consumed
// by a single worker in arrival order, which keeps per-user dialogue steps
// serialized without any per-message locking upstream.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lfmotta/cargobot/core"
	"github.com/lfmotta/cargobot/logging"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue: closed")

// ErrStarted is returned by Start when a consumer is already running.
var ErrStarted = errors.New("queue: consumer already started")

// Handler processes one dequeued message.
type Handler func(ctx context.Context, msg core.Message) error

// Options configure a Queue.
type Options struct {
	// OnError is invoked once per failed message, after which the message
	// is dropped. Optional.
	OnError func(msg core.Message, err error)
	Logger  logging.Logger
}

// Queue is an unbounded FIFO with a single consumer.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []core.Message
	closed  bool
	started bool
	done    chan struct{}

	onError func(msg core.Message, err error)
	logger  logging.Logger
}

// New creates a Queue. Call Start to attach the consumer.
func New(optFns ...func(o *Options)) *Queue {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	q := &Queue{
		done:    make(chan struct{}),
		onError: opts.OnError,
		logger:  core.EnsureLogger(opts.Logger),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a message. Order of arrival is order of processing.
func (q *Queue) Enqueue(msg core.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, msg)
	q.cond.Signal()
	return nil
}

// Size returns the number of pending messages.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Start launches the single consumer goroutine. The consumer runs until
// Close is called or ctx is cancelled; pending messages are drained on
// Close but not on cancellation.
func (q *Queue) Start(ctx context.Context, handler Handler) error {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return ErrStarted
	}
	q.started = true
	q.mu.Unlock()

	// Wake the consumer when the context ends, it may be parked in Wait.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.cond.Broadcast()
		case <-stop:
		}
	}()

	go func() {
		defer close(q.done)
		defer close(stop)
		for {
			msg, ok := q.next(ctx)
			if !ok {
				return
			}
			q.handle(ctx, handler, msg)
		}
	}()
	return nil
}

// next blocks until a message is available. ok=false means the consumer
// should exit.
func (q *Queue) next(ctx context.Context) (core.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return core.Message{}, false
		}
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			return msg, true
		}
		if q.closed {
			return core.Message{}, false
		}
		q.cond.Wait()
	}
}

func (q *Queue) handle(ctx context.Context, handler Handler, msg core.Message) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("message handler panicked", "messageID", msg.ID, "panic", r)
			if q.onError != nil {
				q.onError(msg, fmt.Errorf("handler panic: %v", r))
			}
		}
	}()

	if err := handler(ctx, msg); err != nil {
		q.logger.Warn("message processing failed", "messageID", msg.ID, "sender", msg.Sender, "retries", msg.Retries, "error", err)
		if q.onError != nil {
			q.onError(msg, err)
		}
	}
}

// Close stops accepting messages and waits for the consumer to drain the
// backlog. Safe to call once.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	started := q.started
	q.mu.Unlock()
	q.cond.Broadcast()
	if started {
		<-q.done
	}
}
