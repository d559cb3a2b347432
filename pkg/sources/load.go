package sources

import (
	"context"

	"github.com/arthur-debert/serverwrap/pkg/cache"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/internal/hashutil"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/transform"
)

// Load brings the cache entry of one source up to date and returns the
// artifact to install.
//
// When the resolver has no candidate the last cached artifact is reused. A
// matching token returns the cached artifact without downloading the body.
// Otherwise the artifact is fetched, verified, transformed and committed. If
// the pipeline produces nothing the entry is left untouched.
func Load(ctx context.Context, resolver Resolver, entry *cache.Entry, spec Spec, pipeline transform.Pipeline) (cache.Reference, error) {
	logger := logging.GetLogger("sources").With().
		Str("key", entry.Key()).
		Str("source", spec.String()).
		Logger()

	candidate, err := resolver.Resolve(ctx, spec)
	if err != nil {
		return cache.Reference{}, err
	}

	if candidate == nil {
		if ref, ok := entry.Existing(); ok {
			logger.Warn().Str("cached", ref.Name()).Msg("No remote candidate, using cached artifact")
			return ref, nil
		}
		return cache.Reference{}, errors.Newf(errors.ErrMissingArtifact, "no artifact found for %s", spec).
			WithDetail("key", entry.Key())
	}

	result := entry.TryUpdate(candidate.Token)
	if ref, ok := result.Reference(); ok {
		logger.Debug().Str("token", candidate.Token.String()).Msg("Cached artifact is current")
		return ref, nil
	}
	updater, _ := result.Updater()

	logger.Info().Str("from", candidate.Locator).Msg("Downloading artifact")
	data, err := resolver.Fetch(ctx, candidate)
	if err != nil {
		return cache.Reference{}, err
	}

	if err := verify(candidate, data); err != nil {
		return cache.Reference{}, err
	}

	file, err := pipeline.Apply(transform.File{Name: candidate.Name, Bytes: data})
	if err != nil {
		return cache.Reference{}, err
	}
	if file == nil {
		return cache.Reference{}, errors.Newf(errors.ErrMissingArtifact, "transforms produced no file from %s", candidate.Name).
			WithDetail("key", entry.Key())
	}

	ref, err := updater.Update(*file)
	if err != nil {
		return cache.Reference{}, err
	}
	logger.Info().Str("file", ref.Name()).Int("bytes", len(file.Bytes)).Msg("Artifact updated")
	return ref, nil
}

func verify(candidate *Candidate, data []byte) error {
	token := candidate.Token
	if !token.IsContentHash() {
		return nil
	}
	ok, err := hashutil.Verify(token.Algorithm, token.Value, data)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "checksum failed")
	}
	if !ok {
		return errors.Newf(errors.ErrIntegrity, "%s does not match %s", candidate.Name, token).
			WithDetail("locator", candidate.Locator)
	}
	return nil
}
