// Package objectstore resolves artifacts stored in S3-compatible buckets.
//
// Objects are addressed by URL:
//
//	s3+https://minio.example.com/bucket/path/to/mod.jar
//	s3+http://127.0.0.1:9000/bucket/mod.jar?region=us-east-1
//
// The object's ETag is its fingerprint.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arthur-debert/serverwrap/internal/version"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/sources/remote"
)

// Location identifies one object.
type Location struct {
	Endpoint string
	Secure   bool
	Region   string
	Bucket   string
	Key      string
}

// Name returns the object's base name.
func (l Location) Name() string {
	return path.Base(l.Key)
}

func (l Location) String() string {
	scheme := "s3+http"
	if l.Secure {
		scheme = "s3+https"
	}
	return scheme + "://" + l.Endpoint + "/" + l.Bucket + "/" + l.Key
}

// ParseURL parses an s3+http(s) object URL.
func ParseURL(raw string) (Location, error) {
	malformed := func(reason string) error {
		return errors.Newf(errors.ErrMalformedReference, "object URL %q: %s", raw, reason).WithDetail("url", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, malformed(err.Error())
	}

	var secure bool
	switch u.Scheme {
	case "s3+https":
		secure = true
	case "s3+http":
	default:
		return Location{}, malformed("scheme must be s3+http or s3+https")
	}
	if u.Host == "" {
		return Location{}, malformed("missing endpoint host")
	}

	bucket, key, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, malformed("path must be /bucket/key")
	}

	return Location{
		Endpoint: u.Host,
		Secure:   secure,
		Region:   u.Query().Get("region"),
		Bucket:   bucket,
		Key:      key,
	}, nil
}

// Credentials are static keys. Empty keys fall back to AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY, and then to anonymous access.
type Credentials struct {
	AccessKey string
	SecretKey string
}

func (c Credentials) resolve() Credentials {
	if c.AccessKey == "" && c.SecretKey == "" {
		return Credentials{
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
	}
	return c
}

// Object is the metadata of a resolved object.
type Object struct {
	Location Location
	ETag     string
	Size     int64
}

// Client caches one minio client per endpoint.
type Client struct {
	creds Credentials

	mu      sync.Mutex
	clients map[string]*minio.Client
}

// NewClient creates a client using creds for every endpoint.
func NewClient(creds Credentials) *Client {
	return &Client{creds: creds.resolve(), clients: make(map[string]*minio.Client)}
}

func (c *Client) client(loc Location) (*minio.Client, error) {
	id := fmt.Sprintf("%t|%s|%s", loc.Secure, loc.Endpoint, loc.Region)

	c.mu.Lock()
	defer c.mu.Unlock()

	if mc, ok := c.clients[id]; ok {
		return mc, nil
	}
	mc, err := minio.New(loc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.creds.AccessKey, c.creds.SecretKey, ""),
		Secure: loc.Secure,
		Region: loc.Region,
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedReference, "invalid object endpoint %s", loc.Endpoint)
	}
	mc.SetAppInfo("serverwrap", version.Version)
	c.clients[id] = mc
	return mc, nil
}

// Stat looks up an object. A missing object yields nil without error.
func (c *Client) Stat(ctx context.Context, loc Location) (*Object, error) {
	mc, err := c.client(loc)
	if err != nil {
		return nil, err
	}

	info, err := mc.StatObject(ctx, loc.Bucket, loc.Key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			logger := logging.GetLogger("objectstore")
			logger.Debug().Str("object", loc.String()).Msg("Object not found")
			return nil, nil
		}
		return nil, mapError(err, "stat", loc)
	}

	return &Object{Location: loc, ETag: info.ETag, Size: info.Size}, nil
}

// Download fetches the object. When etag is set the download fails if the
// object changed since it was resolved.
func (c *Client) Download(ctx context.Context, loc Location, etag string) ([]byte, error) {
	mc, err := c.client(loc)
	if err != nil {
		return nil, err
	}

	opts := minio.GetObjectOptions{}
	if etag != "" {
		if err := opts.SetMatchETag(etag); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "invalid etag")
		}
	}

	obj, err := mc.GetObject(ctx, loc.Bucket, loc.Key, opts)
	if err != nil {
		return nil, mapError(err, "get", loc)
	}
	defer func() {
		_ = obj.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(obj, remote.MaxArtifactSize+1))
	if err != nil {
		return nil, mapError(err, "read", loc)
	}
	if len(data) > remote.MaxArtifactSize {
		return nil, errors.Newf(errors.ErrNetwork, "object %s exceeds %d bytes", loc, remote.MaxArtifactSize)
	}
	return data, nil
}

func mapError(err error, op string, loc Location) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode != 0 {
		return errors.Wrapf(err, errors.ErrHTTPStatus, "%s %s failed", op, loc).
			WithDetail("status", resp.StatusCode).
			WithDetail("code", resp.Code)
	}
	return errors.Wrapf(err, errors.ErrNetwork, "%s %s failed", op, loc)
}
