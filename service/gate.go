package service

import (
	"context"
	"sync"
)

type gateState int

const (
	gateUninitialized gateState = iota
	gateInitializing
	gateReady
	gateFailed
)

// readinessGate runs a probe before the first guarded request. The probe runs
// at most once at a time: concurrent callers block on the mutex and observe
// the outcome. Ready is terminal; a failed probe is retried by the next
// caller.
type readinessGate struct {
	mu    sync.Mutex
	state gateState
	probe func(ctx context.Context) error
}

func newReadinessGate(probe func(ctx context.Context) error) *readinessGate {
	return &readinessGate{probe: probe}
}

func (g *readinessGate) ensure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == gateReady {
		return nil
	}
	g.state = gateInitializing
	if err := g.probe(ctx); err != nil {
		g.state = gateFailed
		return err
	}
	g.state = gateReady
	return nil
}
