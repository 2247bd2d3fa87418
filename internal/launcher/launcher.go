// Package launcher is the decision point for plugin host startup: reuse a
// live channel when one answers a probe, otherwise build the host binary and
// spawn a fresh process.
package launcher

import (
	"context"
	"os"

	"github.com/hashicorp/go-hclog"

	"plugforge.dev/cli/internal/build"
	"plugforge.dev/cli/internal/config"
	"plugforge.dev/cli/internal/host"
	"plugforge.dev/cli/internal/probe"
	"plugforge.dev/cli/internal/process"
	"plugforge.dev/cli/internal/registry"
)

// ChannelSpawner turns a resolved launch command into a live channel.
type ChannelSpawner func(ctx context.Context, cmd process.Command) (registry.Channel, error)

// Options tunes a single start attempt.
type Options struct {
	// ForceRebuild bypasses both the artifact stamp cache and the
	// toolchain's incremental build cache.
	ForceRebuild bool
}

// Launcher coordinates probing, building and spawning for plugin hosts. All
// collaborators are injected; the launcher holds no hidden global state.
type Launcher struct {
	reg    *registry.Registry
	prober *probe.Prober
	exec   process.Executor
	cfg    *config.Config
	spawn  ChannelSpawner
	log    hclog.Logger
}

// New creates a launcher over the given collaborators.
func New(reg *registry.Registry, prober *probe.Prober, exec process.Executor, cfg *config.Config, spawn ChannelSpawner, log hclog.Logger) *Launcher {
	return &Launcher{
		reg:    reg,
		prober: prober,
		exec:   exec,
		cfg:    cfg,
		spawn:  spawn,
		log:    log,
	}
}

// Start returns a live channel for the identified host. The fast path is a
// probe of the registered channel; only when that fails does a build-and-spawn
// cycle run. Starting an already-running host is cheap and idempotent.
func (l *Launcher) Start(ctx context.Context, id host.Identity, opts Options) (registry.Channel, error) {
	if !opts.ForceRebuild {
		if res := l.prober.Probe(id.Name); res.Alive {
			l.log.Debug("reusing live channel", "host", id.Name)
			return res.Channel, nil
		}
	}

	id = l.completeIdentity(id)

	strategy, err := build.StrategyByName(l.cfg.StrategyFor(id.Name))
	if err != nil {
		return nil, err
	}
	artifactDir := config.ExpandPath(l.cfg.ArtifactDir)

	l.reg.Register(id.Name, func(ctx context.Context) (registry.Channel, error) {
		cmd, err := l.resolveCommand(ctx, id, strategy, artifactDir, opts.ForceRebuild)
		if err != nil {
			return nil, err
		}
		l.log.Info("spawning host", "host", id.Name, "cmd", cmd.String())
		return l.spawn(ctx, cmd)
	})

	return l.reg.Require(ctx, id.Name)
}

// Restart tears down any channel for name and starts it again. The close is
// unconditional: even a channel that still answers pings is replaced, which
// is what makes restart useful after a host wedges without dying.
func (l *Launcher) Restart(ctx context.Context, name string, forceRebuild bool) (registry.Channel, error) {
	if err := l.reg.Close(name); err != nil {
		// The old process may already be gone; the relaunch proceeds
		// regardless.
		l.log.Warn("closing channel before restart", "host", name, "error", err)
	}
	return l.Start(ctx, host.New(name, "", nil), Options{ForceRebuild: forceRebuild})
}

// Stop closes the channel for name. Stopping a host that is not running is a
// no-op.
func (l *Launcher) Stop(name string) error {
	return l.reg.Close(name)
}

// resolveCommand produces the launch command for a host, reusing the stamped
// artifact when the source tree has not moved and running the strategy's
// build pipeline otherwise.
func (l *Launcher) resolveCommand(ctx context.Context, id host.Identity, strategy build.Strategy, artifactDir string, forceRebuild bool) (process.Command, error) {
	if !forceRebuild {
		if cmd, ok := build.CachedCommand(artifactDir, id, l.log); ok {
			return cmd, nil
		}
	}

	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		return process.Command{}, err
	}

	bc := &build.Context{
		Identity:     id,
		ArtifactDir:  artifactDir,
		ForceRebuild: forceRebuild,
		Executor:     l.exec,
	}
	return build.NewPipeline(l.log, strategy.Steps()...).Run(ctx, bc)
}

// completeIdentity fills in directory and arguments from the host's
// configuration when the caller supplied only a name, as restart does.
func (l *Launcher) completeIdentity(id host.Identity) host.Identity {
	if hc, ok := l.cfg.Host(id.Name); ok {
		if id.Dir == "" {
			id.Dir = hc.Dir
		}
		if len(id.Args) == 0 {
			id.Args = append([]string(nil), hc.Args...)
		}
	}
	if id.Dir == "" {
		id.Dir = "."
	}
	return id
}
