package application

import (
	"sync/atomic"

	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

// reentrancyGuard is the in-progress flag of the engine. While a mutating
// operation holds it, every other guarded call fails at once with
// ErrReentrantCall. A callback from an external token transfer cannot be told
// apart from an unrelated caller, so neither is queued.
type reentrancyGuard struct {
	inFlight atomic.Bool
}

func newReentrancyGuard() *reentrancyGuard {
	return &reentrancyGuard{}
}

// enter claims the guard. The returned release is safe to call more than once.
func (g *reentrancyGuard) enter() (func(), error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, domainerrors.ErrReentrantCall
	}

	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			g.inFlight.Store(false)
		}
	}, nil
}

func (g *reentrancyGuard) active() bool {
	return g.inFlight.Load()
}
