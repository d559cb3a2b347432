// Package github resolves release assets through the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/sources/remote"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// Release is a GitHub release and its assets.
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Assets  []Asset `json:"assets"`
}

// Asset is a file attached to a release.
type Asset struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	URL                string    `json:"url"`
	BrowserDownloadURL string    `json:"browser_download_url"`
	Size               int64     `json:"size"`
	Digest             string    `json:"digest"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Client talks to the GitHub API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a client. An empty token means unauthenticated access; an
// empty baseURL means DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

func (c *Client) header(accept string) http.Header {
	h := http.Header{}
	h.Set("Accept", accept)
	h.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// ParseRepository splits "owner/repo".
func ParseRepository(repository string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(repository), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", errors.Newf(errors.ErrMalformedReference, "repository %q is not in owner/repo form", repository).
			WithDetail("repository", repository)
	}
	return owner, repo, nil
}

// Release fetches the release with the given tag, or the latest release when
// tag is empty.
func (c *Client) Release(ctx context.Context, owner, repo, tag string) (*Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))
	if tag != "" {
		endpoint = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(tag))
	}

	var release Release
	if err := remote.GetJSON(ctx, c.http, endpoint, c.header("application/vnd.github+json"), &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// MatchAsset returns the first asset whose name matches pattern, a path.Match
// glob. An empty pattern matches any asset.
func MatchAsset(release *Release, pattern string) (*Asset, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedReference, "invalid asset pattern %q", pattern)
	}
	for i := range release.Assets {
		if ok, _ := path.Match(pattern, release.Assets[i].Name); ok {
			asset := release.Assets[i]
			return &asset, nil
		}
	}
	return nil, nil
}

// Latest resolves the asset of a release matching pattern. It returns nil
// when the release has no matching asset.
func (c *Client) Latest(ctx context.Context, owner, repo, tag, pattern string) (*Asset, error) {
	release, err := c.Release(ctx, owner, repo, tag)
	if err != nil {
		return nil, err
	}
	asset, err := MatchAsset(release, pattern)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("github").With().Str("repository", owner+"/"+repo).Str("release", release.TagName).Logger()
	if asset == nil {
		logger.Debug().Str("pattern", pattern).Int("assets", len(release.Assets)).Msg("No release asset matched")
		return nil, nil
	}
	logger.Debug().Str("asset", asset.Name).Msg("Selected release asset")
	return asset, nil
}

// Download fetches an asset's bytes through the asset API endpoint, which
// also works for private repositories.
func (c *Client) Download(ctx context.Context, asset Asset) ([]byte, error) {
	target := asset.URL
	header := c.header("application/octet-stream")
	if target == "" {
		target = asset.BrowserDownloadURL
		header = http.Header{}
	}
	return remote.Get(ctx, c.http, target, header, remote.MaxArtifactSize)
}
