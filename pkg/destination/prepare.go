package destination

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/serverwrap/pkg/cache"
	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/sources"
	"github.com/arthur-debert/serverwrap/pkg/status"
	"github.com/arthur-debert/serverwrap/pkg/transform"
	"github.com/arthur-debert/serverwrap/pkg/types"
)

// Env is what preparing a destination needs.
type Env struct {
	FS types.FS
	// CacheRoot holds one store per destination name.
	CacheRoot string
	Resolver  sources.Resolver
	Status    *status.Writer
	// Concurrency bounds parallel sources within one destination. Values
	// below 1 mean sequential.
	Concurrency int
}

// Item is one source installed into a destination.
type Item struct {
	Group     string
	Key       string
	Reference cache.Reference
}

// Prepared is a destination whose sources are resolved but not yet applied.
type Prepared struct {
	Name string
	Root string
	// Items keeps declaration order: groups, then keys, both sorted.
	Items []Item
}

type task struct {
	group    string
	key      string
	decl     config.SourceDecl
	pipeline transform.Pipeline
}

// Prepare loads every source of dest through the cache. Failing sources are
// logged, reported and excluded. Failing to open or persist the cache store
// fails the destination.
func Prepare(ctx context.Context, env Env, name string, dest config.Destination) (*Prepared, error) {
	logger := logging.GetLogger("destination").With().Str("destination", name).Logger()
	done := logging.LogOperationStart(logger, "prepare")
	defer done()

	store, err := cache.Open(env.FS, filepath.Join(env.CacheRoot, name))
	if err != nil {
		return nil, err
	}

	tasks := plan(env, name, dest)
	refs := make([]*cache.Reference, len(tasks))

	limit := env.Concurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, t := range tasks {
		g.Go(func() error {
			ref, err := loadOne(ctx, env, store, t)
			if err != nil {
				logger.Error().Err(err).Str("key", t.key).Str("group", t.group).Msg("Failed to load source, excluding it")
				env.Status.Write(status.FailedToLoad(t.key))
				return nil
			}
			refs[i] = &ref
			return nil
		})
	}
	_ = g.Wait()

	if err := store.Close(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared := &Prepared{Name: name, Root: dest.Path}
	for i, t := range tasks {
		if refs[i] == nil {
			continue
		}
		prepared.Items = append(prepared.Items, Item{Group: t.group, Key: t.key, Reference: *refs[i]})
	}
	logger.Info().Int("sources", len(tasks)).Int("loaded", len(prepared.Items)).Msg("Destination prepared")
	return prepared, nil
}

// plan flattens the groups of dest. Groups whose transforms do not build are
// reported and skipped, as are keys already used by an earlier group.
func plan(env Env, name string, dest config.Destination) []task {
	logger := logging.GetLogger("destination").With().Str("destination", name).Logger()

	var tasks []task
	seen := make(map[string]string)
	for _, group := range dest.GroupNames() {
		set := dest.Sources[group]

		pipeline, err := transform.Build(set.Transform)
		if err != nil {
			logger.Error().Err(err).Str("group", group).Msg("Invalid transform, excluding group")
			for _, key := range set.Keys() {
				env.Status.Write(status.FailedToLoad(key))
			}
			continue
		}

		for _, key := range set.Keys() {
			if other, dup := seen[key]; dup {
				logger.Warn().Str("key", key).Str("group", group).Str("first", other).Msg("Duplicate source key, ignoring")
				continue
			}
			seen[key] = group
			tasks = append(tasks, task{group: group, key: key, decl: set.Sources[key], pipeline: pipeline})
		}
	}
	return tasks
}

func loadOne(ctx context.Context, env Env, store *cache.Store, t task) (cache.Reference, error) {
	spec, err := sources.FromDecl(t.decl)
	if err != nil {
		return cache.Reference{}, err
	}
	return sources.Load(ctx, env.Resolver, store.Entry(t.key), spec, t.pipeline)
}

// PrepareAll prepares every destination concurrently, one goroutine each.
// A destination that fails is reported and skipped; the result holds the
// others in name order. Only cancellation of ctx is returned as an error.
func PrepareAll(ctx context.Context, env Env, decls *config.Destinations) ([]*Prepared, error) {
	names := decls.Names()
	results := make([]*Prepared, len(names))

	logger := logging.GetLogger("destination")
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			p, err := Prepare(ctx, env, name, decls.Destinations[name])
			if err != nil {
				if ctx.Err() == nil {
					logger.Error().Err(err).Str("destination", name).Msg("Failed to prepare destination, skipping it")
					env.Status.Write(status.Textf("Failed to prepare destination `%s`... Skipping!", name))
				}
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared := make([]*Prepared, 0, len(results))
	for _, p := range results {
		if p != nil {
			prepared = append(prepared, p)
		}
	}
	return prepared, nil
}
