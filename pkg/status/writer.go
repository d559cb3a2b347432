package status

import (
	"context"
	"sync"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/logging"
)

// Notifier delivers one payload.
type Notifier interface {
	Notify(ctx context.Context, p Payload) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, p Payload) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, p Payload) error {
	return f(ctx, p)
}

// Multi delivers to every notifier, returning the first error.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, p Payload) error {
		var first error
		for _, n := range notifiers {
			if err := n.Notify(ctx, p); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// queueSize is the number of payloads buffered before Write drops.
const queueSize = 64

// deliverTimeout bounds one delivery.
const deliverTimeout = 30 * time.Second

// Writer queues payloads and delivers them in order in the background.
// The zero value is not usable; use NewWriter or None.
type Writer struct {
	queue chan Payload
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewWriter starts delivering to n.
func NewWriter(n Notifier) *Writer {
	w := &Writer{queue: make(chan Payload, queueSize), done: make(chan struct{})}
	go w.loop(n)
	return w
}

// None returns a Writer that discards everything.
func None() *Writer {
	return NewWriter(NotifierFunc(func(context.Context, Payload) error { return nil }))
}

func (w *Writer) loop(n Notifier) {
	defer close(w.done)
	logger := logging.GetLogger("status")

	for p := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := n.Notify(ctx, p); err != nil {
			logger.Warn().Err(err).Str("message", p.String()).Msg("Failed to deliver status message")
		}
		cancel()
	}
}

// Write queues p. It never blocks; when the queue is full p is dropped.
// Writing after Close, or to a nil Writer, is a no-op.
func (w *Writer) Write(p Payload) {
	if w == nil {
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.queue <- p:
	default:
		logger := logging.GetLogger("status")
		logger.Warn().Str("message", p.String()).Msg("Status queue full, dropping message")
	}
}

// Close delivers queued payloads and stops the writer.
func (w *Writer) Close() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}
