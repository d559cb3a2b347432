package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/cache"
	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/internal/hashutil"
	"github.com/arthur-debert/serverwrap/pkg/sources/github"
	"github.com/arthur-debert/serverwrap/pkg/sources/modrinth"
	"github.com/arthur-debert/serverwrap/pkg/sources/objectstore"
)

// Algorithms of tokens that are not content hashes.
const (
	AlgorithmGitHubAsset = "github-asset"
	AlgorithmETag        = "etag"
)

// Candidate is a resolved artifact that has not been downloaded yet.
type Candidate struct {
	Token cache.Token
	// Name is the file name suggested by the provider.
	Name string
	// Locator is a human-readable download location.
	Locator string

	// payload is the provider value Fetch needs.
	payload interface{}
}

// Resolver finds and fetches artifacts. Resolve returns nil without error
// when the provider has no usable candidate.
type Resolver interface {
	Resolve(ctx context.Context, spec Spec) (*Candidate, error)
	Fetch(ctx context.Context, candidate *Candidate) ([]byte, error)
}

// Resolvers dispatches each Spec variant to its provider client.
type Resolvers struct {
	GitHub   *github.Client
	Modrinth *modrinth.Client
	Objects  *objectstore.Client
}

// NewResolvers builds the provider clients from the configured tokens.
func NewResolvers(httpClient *http.Client, tokens config.Tokens) *Resolvers {
	return &Resolvers{
		GitHub:   github.NewClient(httpClient, "", tokens.GitHub),
		Modrinth: modrinth.NewClient(httpClient, "", tokens.Modrinth),
		Objects: objectstore.NewClient(objectstore.Credentials{
			AccessKey: tokens.S3.AccessKey,
			SecretKey: tokens.S3.SecretKey,
		}),
	}
}

// Resolve implements Resolver.
func (r *Resolvers) Resolve(ctx context.Context, spec Spec) (*Candidate, error) {
	switch s := spec.(type) {
	case GitHub:
		asset, err := r.GitHub.Latest(ctx, s.Owner, s.Repo, s.Tag, s.Asset)
		if err != nil || asset == nil {
			return nil, err
		}
		return &Candidate{
			Token:   assetToken(*asset),
			Name:    asset.Name,
			Locator: asset.BrowserDownloadURL,
			payload: *asset,
		}, nil

	case Modrinth:
		file, err := r.Modrinth.Latest(ctx, s.ProjectID, s.GameVersion, s.Loader)
		if err != nil || file == nil {
			return nil, err
		}
		return &Candidate{
			Token:   cache.SHA512(file.Hashes.SHA512),
			Name:    file.Filename,
			Locator: file.URL,
			payload: *file,
		}, nil

	case Object:
		obj, err := r.Objects.Stat(ctx, s.Location)
		if err != nil || obj == nil {
			return nil, err
		}
		return &Candidate{
			Token:   cache.Token{Algorithm: AlgorithmETag, Value: obj.ETag},
			Name:    s.Location.Name(),
			Locator: s.Location.String(),
			payload: *obj,
		}, nil

	default:
		return nil, errors.Newf(errors.ErrInternal, "no resolver for source %T", spec)
	}
}

// Fetch implements Resolver.
func (r *Resolvers) Fetch(ctx context.Context, candidate *Candidate) ([]byte, error) {
	switch p := candidate.payload.(type) {
	case github.Asset:
		return r.GitHub.Download(ctx, p)
	case modrinth.File:
		return r.Modrinth.Download(ctx, p)
	case objectstore.Object:
		return r.Objects.Download(ctx, p.Location, p.ETag)
	default:
		return nil, errors.Newf(errors.ErrInternal, "candidate %s was not produced by a resolver", candidate.Name)
	}
}

// assetToken prefers the content digest GitHub publishes for newer assets.
func assetToken(asset github.Asset) cache.Token {
	if alg, value, ok := hashutil.ParsePrefixed(asset.Digest); ok && hashutil.IsContentAlgorithm(alg) {
		return cache.Token{Algorithm: alg, Value: strings.ToLower(value)}
	}
	return cache.Token{
		Algorithm: AlgorithmGitHubAsset,
		Value:     fmt.Sprintf("%d@%s", asset.ID, asset.UpdatedAt.UTC().Format(time.RFC3339)),
	}
}
