// Package launcher wires configuration, sources, destinations and the
// supervisor into the serverwrap main loop.
//
// Every iteration re-reads the configuration and the destinations
// declaration, prepares all destinations, applies them once every one is
// resolved, announces what changed and runs the server.
package launcher

import (
	"context"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/destination"
	"github.com/arthur-debert/serverwrap/pkg/filesystem"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/paths"
	"github.com/arthur-debert/serverwrap/pkg/sources"
	"github.com/arthur-debert/serverwrap/pkg/sources/remote"
	"github.com/arthur-debert/serverwrap/pkg/status"
	"github.com/arthur-debert/serverwrap/pkg/supervisor"
	"github.com/arthur-debert/serverwrap/pkg/types"
	"github.com/arthur-debert/serverwrap/pkg/ui"
)

// Options configures a Launcher. Zero fields get production defaults.
type Options struct {
	Paths *paths.Paths
	FS    types.FS
	Clock supervisor.Clock

	// Output receives console status messages.
	Output io.Writer
	Format ui.Format

	// Notifier replaces the notifiers built from the configuration.
	Notifier status.Notifier

	NewResolver func(cfg *config.Config, client *http.Client) sources.Resolver
	NewExecutor func(cfg *config.Config) supervisor.Executor
}

// Launcher runs synchronization cycles and the supervised server.
type Launcher struct {
	opts Options
}

// New fills in defaults for unset options.
func New(opts Options) *Launcher {
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Clock == nil {
		opts.Clock = supervisor.RealClock()
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.NewResolver == nil {
		opts.NewResolver = func(cfg *config.Config, client *http.Client) sources.Resolver {
			return sources.NewResolvers(client, cfg.Tokens)
		}
	}
	if opts.NewExecutor == nil {
		opts.NewExecutor = func(cfg *config.Config) supervisor.Executor {
			exec := supervisor.NewCommandExecutor(cfg.Run)
			exec.Dir = opts.Paths.WorkDir()
			return exec
		}
	}
	return &Launcher{opts: opts}
}

// SyncResult is the outcome of one synchronization cycle.
type SyncResult struct {
	Applied []*destination.Prepared
	Changes []destination.Change
}

// cycle holds what one iteration loaded.
type cycle struct {
	cfg    *config.Config
	client *http.Client
	status *status.Writer
}

func (l *Launcher) begin() (*cycle, error) {
	cfg, err := config.Load(l.opts.Paths.ConfigPath())
	if err != nil {
		return nil, err
	}
	client := remote.NewHTTPClient(cfg.HTTPTimeout.Std())
	return &cycle{cfg: cfg, client: client, status: status.NewWriter(l.notifier(cfg, client))}, nil
}

func (l *Launcher) notifier(cfg *config.Config, client *http.Client) status.Notifier {
	if l.opts.Notifier != nil {
		return l.opts.Notifier
	}
	var notifiers []status.Notifier
	if cfg.Status.Webhook != "" {
		notifiers = append(notifiers, status.NewWebhook(client, cfg.Status.Webhook))
	}
	if cfg.Status.Console {
		format := l.opts.Format.Resolve(l.opts.Output)
		notifiers = append(notifiers, status.NewConsole(l.opts.Output, format.Color()))
	}
	return status.Multi(notifiers...)
}

// sync prepares and applies every destination.
func (l *Launcher) sync(ctx context.Context, c *cycle) (*SyncResult, error) {
	logger := logging.GetLogger("launcher")
	done := logging.LogOperationStart(logger, "sync")
	defer done()

	location := l.opts.Paths.Resolve(c.cfg.Destinations)
	decls, err := config.LoadDestinations(ctx, c.client, location)
	if err != nil {
		return nil, err
	}
	for name, d := range decls.Destinations {
		d.Path = l.opts.Paths.Resolve(d.Path)
		decls.Destinations[name] = d
	}

	env := destination.Env{
		FS:          l.opts.FS,
		CacheRoot:   l.opts.Paths.CacheRoot(c.cfg.CacheDir),
		Resolver:    l.opts.NewResolver(c.cfg, c.client),
		Status:      c.status,
		Concurrency: c.cfg.SourceConcurrency,
	}
	prepared, err := destination.PrepareAll(ctx, env, decls)
	if err != nil {
		return nil, err
	}

	applied := destination.ApplyAll(l.opts.FS, c.status, prepared)
	result := &SyncResult{Applied: applied, Changes: destination.Changes(applied)}
	logger.Info().
		Int("destinations", len(decls.Destinations)).
		Int("applied", len(applied)).
		Int("changed", len(result.Changes)).
		Msg("Destinations synchronized")
	return result, nil
}

// Sync runs one synchronization cycle without starting the server.
func (l *Launcher) Sync(ctx context.Context) (*SyncResult, error) {
	c, err := l.begin()
	if err != nil {
		return nil, err
	}
	defer c.status.Close()
	return l.sync(ctx, c)
}

// Run loops synchronizing and supervising the server until ctx is done, or
// after one run when restarts are disabled. Configuration and destinations
// errors end the loop.
func (l *Launcher) Run(ctx context.Context) error {
	for iteration := 1; ; iteration++ {
		again, err := l.iterate(ctx, iteration)
		if err != nil || !again {
			return err
		}
	}
}

func (l *Launcher) iterate(ctx context.Context, iteration int) (bool, error) {
	logger := logging.GetLogger("launcher").With().Int("iteration", iteration).Logger()

	c, err := l.begin()
	if err != nil {
		return false, err
	}
	defer c.status.Close()

	if iteration == 1 {
		logTriggers(c.cfg)
	}

	result, err := l.sync(ctx, c)
	if err != nil {
		return false, err
	}
	c.status.Write(status.Startup(destination.ChangedKeys(result.Changes)))

	sup := &supervisor.Supervisor{
		Clock:       l.opts.Clock,
		Status:      c.status,
		MinInterval: c.cfg.MinRestartInterval(),
	}
	run := sup.Supervise(ctx, l.opts.NewExecutor(c.cfg))
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if !c.cfg.Restart {
		logger.Info().Msg("Restarts disabled, exiting")
		return false, run.Err
	}

	if err := sup.Cooldown(ctx, run); err != nil {
		return false, err
	}
	return true, nil
}

// logTriggers reports the declared triggers. They are validated by the
// configuration loader and not dispatched.
func logTriggers(cfg *config.Config) {
	logger := logging.GetLogger("launcher")

	names := make([]string, 0, len(cfg.Triggers))
	for name := range cfg.Triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := cfg.Triggers[name]
		logger.Debug().Str("trigger", name).Str("type", t.Type).Int("port", t.Port).Msg("Trigger declared")
	}
}
