// Package registry models the host environment's channel table explicitly:
// it owns channel handles, keyed by plugin host name, and serializes
// materialization per name. Callers borrow handles and must re-probe rather
// than assume a handle stays valid across suspension points.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Channel is a live bidirectional RPC connection to a plugin host process.
type Channel interface {
	// Ping performs a lightweight liveness round trip.
	Ping() error

	// Running reports whether the backing process is still up.
	Running() bool

	// Close tears down the connection and the backing process.
	Close() error
}

// Factory materializes a channel for a host, typically by building and
// spawning its binary.
type Factory func(ctx context.Context) (Channel, error)

// ErrNotRegistered is returned by Require when no factory exists for a name.
var ErrNotRegistered = fmt.Errorf("no channel factory registered")

// Registry is the channel table. At most one channel per name is canonical
// at any time; registering a new factory supersedes the previous one and
// invalidates any stored channel.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	log     hclog.Logger
}

type entry struct {
	// mu serializes Require calls for one name so concurrent starts cannot
	// race to materialize two channels.
	mu      sync.Mutex
	factory Factory
	channel Channel
}

// New creates an empty registry.
func New(log hclog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		log:     log,
	}
}

// Register installs a factory for name. Last writer wins: a prior factory is
// superseded and a prior stored channel is closed and discarded, so the next
// Require goes through the new factory.
func (r *Registry) Register(name string, factory Factory) {
	e := r.entry(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.channel != nil {
		r.log.Debug("superseding registered channel", "host", name)
		_ = e.channel.Close()
		e.channel = nil
	}
	e.factory = factory
}

// Existing returns the stored channel for name without materializing one.
func (r *Registry) Existing(name string) Channel {
	e := r.lookup(name)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channel
}

// Require returns the channel for name, invoking the registered factory if
// none is stored. Calls for the same name are serialized; the factory runs
// at most once per materialization.
func (r *Registry) Require(ctx context.Context, name string) (Channel, error) {
	e := r.entry(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.channel != nil {
		return e.channel, nil
	}
	if e.factory == nil {
		return nil, fmt.Errorf("require %q: %w", name, ErrNotRegistered)
	}

	ch, err := e.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("materializing channel for %q: %w", name, err)
	}

	e.channel = ch
	return ch, nil
}

// IsRunning reports whether a stored channel exists for name and its backing
// process is up.
func (r *Registry) IsRunning(name string) bool {
	e := r.lookup(name)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channel != nil && e.channel.Running()
}

// Close tears down and discards the stored channel for name. Closing a name
// with no stored channel is a no-op. The channel is discarded even when its
// Close returns an error.
func (r *Registry) Close(name string) error {
	e := r.lookup(name)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.channel == nil {
		return nil
	}

	ch := e.channel
	e.channel = nil
	if err := ch.Close(); err != nil {
		return fmt.Errorf("closing channel for %q: %w", name, err)
	}
	return nil
}

// Names returns the registered host names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) entry(name string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	return e
}

func (r *Registry) lookup(name string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name]
}
