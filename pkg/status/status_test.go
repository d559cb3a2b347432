package status

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/pkg/errors"
)

func TestStartupPayload(t *testing.T) {
	t.Run("no changes", func(t *testing.T) {
		p := Startup(nil)
		assert.Equal(t, "Starting up server...", p.Content)
		assert.Empty(t, p.Embeds)
	})

	t.Run("changes", func(t *testing.T) {
		p := Startup([]string{"sodium", "lithium"})
		require.Len(t, p.Embeds, 1)
		e := p.Embeds[0]
		assert.Equal(t, "Server starting up...", e.Title)
		assert.Equal(t, EmbedRich, e.Type)
		assert.Equal(t, 0x00FF00, e.Color)
		assert.Equal(t, "Here's what changed:\n - `sodium`\n - `lithium`", e.Description)
	})
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Failed to load `sodium`... Excluding!", FailedToLoad("sodium").Content)
	assert.Equal(t, "Server restarted too quickly! Waiting for 239 seconds...", RestartDelayed(239*time.Second).Content)
	assert.Equal(t, "Server restarted too quickly! Waiting for 238 seconds...", RestartDelayed(238600*time.Millisecond).Content,
		"the announced wait never exceeds the sleep")
	assert.Equal(t, "Server closed! Restarting...", Restarting().Content)
}

func TestPayloadJSONDisablesMentions(t *testing.T) {
	data, err := json.Marshal(Text("@everyone hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"@everyone hi","allowed_mentions":{"parse":[]}}`, string(data))
}

func TestWebhook(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewWebhook(srv.Client(), srv.URL).Notify(context.Background(), Startup([]string{"sodium"}))
	require.NoError(t, err)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Server starting up...", got.Embeds[0].Title)
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewWebhook(srv.Client(), srv.URL).Notify(context.Background(), Text("x"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHTTPStatus))
	assert.Equal(t, http.StatusTooManyRequests, errors.GetErrorDetails(err)["status"])
}

func TestConsolePlain(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	require.NoError(t, c.Notify(context.Background(), Startup([]string{"sodium"})))
	require.NoError(t, c.Notify(context.Background(), Restarting()))

	out := buf.String()
	assert.Contains(t, out, "Server starting up...")
	assert.Contains(t, out, "- `sodium`")
	assert.Contains(t, out, "Server closed! Restarting...")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) Notify(_ context.Context, p Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, p.Content)
	return nil
}

func TestWriterDeliversInOrder(t *testing.T) {
	rec := &recorder{}
	w := NewWriter(rec)
	for _, msg := range []string{"a", "b", "c"} {
		w.Write(Text(msg))
	}
	w.Close()

	assert.Equal(t, []string{"a", "b", "c"}, rec.got)
}

func TestWriterSurvivesFailuresAndClose(t *testing.T) {
	calls := 0
	w := NewWriter(NotifierFunc(func(context.Context, Payload) error {
		calls++
		return errors.New(errors.ErrNetwork, "down")
	}))
	w.Write(Text("a"))
	w.Write(Text("b"))
	w.Close()
	w.Close()
	w.Write(Text("after close"))

	assert.Equal(t, 2, calls)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	require.NoError(t, Multi(a, b).Notify(context.Background(), Text("x")))
	assert.Equal(t, []string{"x"}, a.got)
	assert.Equal(t, []string{"x"}, b.got)
}

func TestNone(t *testing.T) {
	w := None()
	w.Write(Text("ignored"))
	w.Close()
}

func TestNilWriter(t *testing.T) {
	var w *Writer
	assert.NotPanics(t, func() {
		w.Write(Text("ignored"))
		w.Close()
	})
}
