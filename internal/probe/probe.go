// Package probe decides whether an existing channel registration is worth
// reusing. A registered handle is not proof of a working process; the only
// reliable liveness signal is a ping round trip.
package probe

import (
	"strings"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"plugforge.dev/cli/internal/registry"
)

// Outcome is the tagged classification of a ping reply. The decision is made
// here at the boundary, never by string inspection in callers.
type Outcome int

const (
	// OutcomeOK means the host replied to the ping.
	OutcomeOK Outcome = iota

	// OutcomeNoHandler means the host is up but has no handler for the
	// probed operation. Liveness, not feature-completeness, is being
	// tested, so this counts as alive.
	OutcomeNoHandler

	// OutcomeTransportError covers everything else: timeout, connection
	// reset, decode failure. The channel is unusable.
	OutcomeTransportError
)

// legacyNoHandlerFragment matches the error text older hosts produce for an
// unimplemented probe. Migration-compatibility fallback only; new hosts
// report codes.Unimplemented.
const legacyNoHandlerFragment = "no handler registered"

// Classify maps a ping error to an Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.Unimplemented {
		return OutcomeNoHandler
	}
	if strings.Contains(err.Error(), legacyNoHandlerFragment) {
		return OutcomeNoHandler
	}
	return OutcomeTransportError
}

// Result reports whether a channel is alive and, if so, which one.
type Result struct {
	Alive   bool
	Channel registry.Channel
}

// Prober checks liveness of registered channels.
type Prober struct {
	reg *registry.Registry
	log hclog.Logger
}

// New creates a Prober over the given registry.
func New(reg *registry.Registry, log hclog.Logger) *Prober {
	return &Prober{reg: reg, log: log}
}

// Probe checks whether a live channel exists for name. It never fails
// outward: a missing registration and every ping failure all report
// not-alive, leaving the caller to take the rebuild path.
func (p *Prober) Probe(name string) Result {
	ch := p.reg.Existing(name)
	if ch == nil {
		return Result{}
	}

	switch outcome := Classify(ch.Ping()); outcome {
	case OutcomeOK:
		return Result{Alive: true, Channel: ch}
	case OutcomeNoHandler:
		p.log.Debug("host has no ping handler, treating as alive", "host", name)
		return Result{Alive: true, Channel: ch}
	default:
		p.log.Debug("registered channel failed ping", "host", name)
		return Result{}
	}
}
