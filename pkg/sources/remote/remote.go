// Package remote holds the HTTP plumbing shared by the source resolvers.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arthur-debert/serverwrap/internal/version"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
)

// MaxArtifactSize bounds a single downloaded artifact.
const MaxArtifactSize = 512 << 20

// maxMetadataSize bounds a JSON API response.
const maxMetadataSize = 16 << 20

// UserAgent identifies serverwrap to remote APIs.
func UserAgent() string {
	return fmt.Sprintf("serverwrap/%s (+https://github.com/arthur-debert/serverwrap)", version.Version)
}

// NewHTTPClient returns a client with the given overall request timeout.
// Zero means no timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Get performs a GET and returns the body of a 2xx response, reading at most
// limit bytes. Transport failures map to ErrNetwork, other statuses to
// ErrHTTPStatus.
func Get(ctx context.Context, client *http.Client, url string, header http.Header, limit int64) ([]byte, error) {
	logger := logging.GetLogger("remote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid request URL %s", url)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent())
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNetwork, "GET %s failed", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	logger.Trace().Str("url", url).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("HTTP response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf(errors.ErrHTTPStatus, "GET %s returned %s", url, resp.Status).
			WithDetail("status", resp.StatusCode).
			WithDetail("body", string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNetwork, "reading %s failed", url)
	}
	if int64(len(body)) > limit {
		return nil, errors.Newf(errors.ErrNetwork, "response from %s exceeds %d bytes", url, limit)
	}
	return body, nil
}

// GetJSON performs a GET and decodes the JSON response into out.
func GetJSON(ctx context.Context, client *http.Client, url string, header http.Header, out interface{}) error {
	body, err := Get(ctx, client, url, header, maxMetadataSize)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, errors.ErrNetwork, "decoding response from %s failed", url)
	}
	return nil
}

// StatusCode returns the HTTP status carried by an ErrHTTPStatus error, or 0.
func StatusCode(err error) int {
	if !errors.IsErrorCode(err, errors.ErrHTTPStatus) {
		return 0
	}
	code, _ := errors.GetErrorDetails(err)["status"].(int)
	return code
}
