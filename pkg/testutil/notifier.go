package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/serverwrap/pkg/status"
)

// RecordingNotifier keeps every delivered payload.
type RecordingNotifier struct {
	mu       sync.Mutex
	payloads []status.Payload
}

// Notify implements status.Notifier.
func (r *RecordingNotifier) Notify(_ context.Context, p status.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	return nil
}

// Payloads returns the delivered payloads in order.
func (r *RecordingNotifier) Payloads() []status.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.Payload(nil), r.payloads...)
}

// Messages returns the delivered payloads flattened to text.
func (r *RecordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.payloads))
	for _, p := range r.payloads {
		out = append(out, p.String())
	}
	return out
}
