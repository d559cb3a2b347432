// Package modrinth resolves project versions through the Modrinth v2 API.
package modrinth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/sources/remote"
)

// DefaultBaseURL is the public Modrinth API.
const DefaultBaseURL = "https://api.modrinth.com"

// Version is one published version of a project.
type Version struct {
	ID            string    `json:"id"`
	VersionNumber string    `json:"version_number"`
	DatePublished time.Time `json:"date_published"`
	Files         []File    `json:"files"`
}

// File is a downloadable file of a version.
type File struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Hashes   Hashes `json:"hashes"`
}

// Hashes are the digests Modrinth publishes for a file. Old versions may lack sha512.
type Hashes struct {
	SHA1   string `json:"sha1"`
	SHA512 string `json:"sha512"`
}

// Client talks to the Modrinth API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a client. An empty token means anonymous access; an
// empty baseURL means DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: baseURL, token: token}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", c.token)
	}
	return h
}

// VersionsURL builds the project version listing URL, filtered by game
// version and loader when they are set.
func (c *Client) VersionsURL(projectID, gameVersion, loader string) string {
	u := fmt.Sprintf("%s/v2/project/%s/version", c.baseURL, url.PathEscape(projectID))

	var query string
	if gameVersion != "" {
		query = "game_versions=" + url.QueryEscape(fmt.Sprintf("[%q]", gameVersion))
	}
	if loader != "" {
		if query != "" {
			query += "&"
		}
		query += "loaders=" + url.QueryEscape(fmt.Sprintf("[%q]", loader))
	}
	if query != "" {
		u += "?" + query
	}
	return u
}

// Versions lists the versions of a project.
func (c *Client) Versions(ctx context.Context, projectID, gameVersion, loader string) ([]Version, error) {
	var versions []Version
	if err := remote.GetJSON(ctx, c.http, c.VersionsURL(projectID, gameVersion, loader), c.header(), &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// Latest returns the newest version's primary file that carries a sha512
// digest. It returns nil when there is none.
func (c *Client) Latest(ctx context.Context, projectID, gameVersion, loader string) (*File, error) {
	versions, err := c.Versions(ctx, projectID, gameVersion, loader)
	if err != nil {
		return nil, err
	}
	return SelectFile(projectID, versions), nil
}

// SelectFile orders versions by publication date and scans from the newest.
// Each version's first primary file is its only candidate; a candidate
// without a sha512 digest is skipped with a warning.
func SelectFile(projectID string, versions []Version) *File {
	logger := logging.GetLogger("modrinth").With().Str("project", projectID).Logger()

	sorted := make([]Version, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DatePublished.Before(sorted[j].DatePublished)
	})

	for i := len(sorted) - 1; i >= 0; i-- {
		version := sorted[i]
		primary := primaryFile(version)
		if primary == nil {
			continue
		}
		if primary.Hashes.SHA512 == "" {
			logger.Warn().
				Str("version", version.VersionNumber).
				Str("file", primary.Filename).
				Msg("Skipping old version without sha512 hash")
			continue
		}
		logger.Debug().Str("version", version.VersionNumber).Str("file", primary.Filename).Msg("Selected version")
		file := *primary
		return &file
	}
	return nil
}

func primaryFile(version Version) *File {
	for i := range version.Files {
		if version.Files[i].Primary {
			return &version.Files[i]
		}
	}
	return nil
}

// Download fetches a file's bytes.
func (c *Client) Download(ctx context.Context, file File) ([]byte, error) {
	return remote.Get(ctx, c.http, file.URL, nil, remote.MaxArtifactSize)
}
