package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "serverwrap/"))
			assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("body"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 20)))
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := server.Client()

	t.Run("success", func(t *testing.T) {
		body, err := Get(ctx, client, server.URL+"/ok", http.Header{"Authorization": {"Bearer t"}}, 100)
		require.NoError(t, err)
		assert.Equal(t, "body", string(body))
	})

	t.Run("status", func(t *testing.T) {
		_, err := Get(ctx, client, server.URL+"/forbidden", nil, 100)
		require.Error(t, err)
		assert.Equal(t, errors.ErrHTTPStatus, errors.GetErrorCode(err))
		assert.Equal(t, http.StatusForbidden, StatusCode(err))
	})

	t.Run("too_large", func(t *testing.T) {
		_, err := Get(ctx, client, server.URL+"/big", nil, 10)
		require.Error(t, err)
		assert.Equal(t, errors.ErrNetwork, errors.GetErrorCode(err))
	})

	t.Run("transport", func(t *testing.T) {
		_, err := Get(ctx, client, "http://127.0.0.1:1/unreachable", nil, 10)
		require.Error(t, err)
		assert.Equal(t, errors.ErrNetwork, errors.GetErrorCode(err))
		assert.Equal(t, 0, StatusCode(err))
	})
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			_, _ = w.Write([]byte("{"))
			return
		}
		_, _ = w.Write([]byte(`{"name":"sodium"}`))
	}))
	defer server.Close()

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, GetJSON(context.Background(), server.Client(), server.URL, nil, &out))
	assert.Equal(t, "sodium", out.Name)

	err := GetJSON(context.Background(), server.Client(), server.URL+"/bad", nil, &out)
	assert.Equal(t, errors.ErrNetwork, errors.GetErrorCode(err))
}
