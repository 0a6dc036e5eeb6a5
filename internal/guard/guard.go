// Package guard implements the ordered safety checks that precede every
// governed mutation. Each guard either lets the request continue or
// terminates it with a typed error; the chain makes the order an explicit,
// testable piece of configuration rather than implicit call order.
package guard

import (
	"context"

	"github.com/adlytics/govern/internal/models"
)

// Guard is one safety check in the chain.
type Guard interface {
	// Name identifies the guard in logs, metrics, and tests.
	Name() string
	// Check returns nil to continue or a typed error to short-circuit.
	Check(ctx context.Context, actor models.Actor, action models.Action) error
}

// Chain runs guards strictly in construction order, stopping at the first
// failure.
type Chain struct {
	guards []Guard
}

// NewChain builds a chain over the given guards, evaluated in order.
func NewChain(guards ...Guard) *Chain {
	return &Chain{guards: guards}
}

// Names returns the guard names in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.guards))
	for i, g := range c.guards {
		names[i] = g.Name()
	}

	return names
}

// Check evaluates every guard in order. The first error terminates the
// request; later guards are not consulted, so a halted system never leaks
// who would have been allowed to act.
func (c *Chain) Check(ctx context.Context, actor models.Actor, action models.Action) error {
	for _, g := range c.guards {
		if err := g.Check(ctx, actor, action); err != nil {
			return err
		}
	}

	return nil
}
