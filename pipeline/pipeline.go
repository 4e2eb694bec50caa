// Package pipeline is a small host for message processing hooks. Plugins
// register hooks against named phases, and the pipeline runs those hooks in
// order for each message, stopping when a hook accepts or rejects it.
//
// Hooks report completion by returning a Result. Every call to a hook yields
// exactly one result, including when the hook panics, in which case the
// pipeline substitutes DenySoft.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrHookPanic is wrapped by the error Run returns when a hook panics.
var ErrHookPanic = errors.New("hook panicked")

// Hook is a function run by the pipeline during a phase. The connection, or its
// transaction, may be nil. Hooks must not block.
type Hook func(ctx context.Context, conn *Connection) Result

// Registrar is what a plugin needs from the host to attach itself: the ability
// to register a named hook for a phase.
type Registrar interface {
	Register(phase Phase, name string, hook Hook)
}

type registeredHook struct {
	name string
	hook Hook
}

// Pipeline holds the registered hooks and runs them. Registration is usually
// done once at startup. Run may be called concurrently for different
// connections.
type Pipeline struct {
	logger zerolog.Logger

	mu    sync.RWMutex
	hooks map[Phase][]registeredHook
}

var _ Registrar = (*Pipeline)(nil)

// New creates an empty pipeline.
func New(logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		hooks:  make(map[Phase][]registeredHook, len(Phases)),
	}
}

// Register adds the hook to the end of the list of hooks for the phase.
func (p *Pipeline) Register(phase Phase, name string, hook Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hooks[phase] = append(p.hooks[phase], registeredHook{name, hook})
	p.logger.Debug().
		Str("phase", phase.String()).
		Str("hook", name).
		Msg("registered hook")
}

// Hooks returns the names of the hooks registered for the phase, in the order
// they run.
func (p *Pipeline) Hooks(phase Phase) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.hooks[phase]))
	for i, rh := range p.hooks[phase] {
		names[i] = rh.name
	}
	return names
}

// callHook runs a single hook, turning a panic into DenySoft and an error.
func callHook(ctx context.Context, rh registeredHook, conn *Connection) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = DenySoft
			err = fmt.Errorf("%w: %s: %v", ErrHookPanic, rh.name, r)
		}
	}()

	return rh.hook(ctx, conn), nil
}

// Run calls every hook registered for the phase, in order. It stops at the
// first hook that returns something other than Continue and returns that
// result. If every hook continues, the result is Continue.
//
// If a hook panics, Run logs it and returns DenySoft with an error wrapping
// ErrHookPanic. If the context is cancelled, Run stops before the next hook and
// returns DenySoft with the context error.
func (p *Pipeline) Run(ctx context.Context, phase Phase, conn *Connection) (Result, error) {
	p.mu.RLock()
	hooks := p.hooks[phase]
	p.mu.RUnlock()

	logger := p.logger
	if conn != nil {
		logger = conn.Logger
	}
	logger = logger.With().Str("phase", phase.String()).Logger()

	for _, rh := range hooks {
		if err := ctx.Err(); err != nil {
			return DenySoft, err
		}

		res, err := callHook(ctx, rh, conn)
		if err != nil {
			logger.Error().Err(err).Str("hook", rh.name).Msg("hook failed")
			return res, err
		}

		if res != Continue {
			logger.Debug().
				Str("hook", rh.name).
				Stringer("result", res).
				Msg("hook ended phase")
			return res, nil
		}
	}

	return Continue, nil
}
