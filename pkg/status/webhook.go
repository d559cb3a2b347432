package status

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/arthur-debert/serverwrap/pkg/errors"
)

// Webhook posts payloads as JSON to a Discord-compatible webhook URL.
type Webhook struct {
	client *http.Client
	url    string
}

// NewWebhook creates a webhook notifier.
func NewWebhook(client *http.Client, url string) *Webhook {
	return &Webhook{client: client, url: url}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode status payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid webhook URL")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrNetwork, "webhook request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf(errors.ErrHTTPStatus, "webhook returned %d", resp.StatusCode).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(snippet))
	}
	return nil
}
