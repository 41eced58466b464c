package mintseed

import (
	"context"
	"sort"
	"sync"

	"github.com/mintseed/mintseed/schema"
)

// Allocator hands out ordinals for new leaves. Reservations are serialized
// behind one mutex: the counter is seeded from the on-chain mint count and
// never moves below it, so two requests can never read the same chain state
// and submit for the same position. Released reservations (failed submits)
// go to a free list and are reused before the counter advances.
type Allocator struct {
	ledger    Ledger
	maxSupply uint64

	mu   sync.Mutex
	next uint64
	free []uint64 // ascending
}

func NewAllocator(ledger Ledger, maxSupply uint64) *Allocator {
	if maxSupply == 0 {
		maxSupply = schema.DefaultMaxSupply
	}
	return &Allocator{
		ledger:    ledger,
		maxSupply: maxSupply,
		free:      make([]uint64, 0),
	}
}

// Reserve returns the next free ordinal, or schema.ErrSupplyExhausted once
// the collection is fully minted.
func (a *Allocator) Reserve(ctx context.Context) (uint64, error) {
	count, err := a.ledger.IssuedCount(ctx)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.raiseFloor(count)

	if len(a.free) > 0 {
		n := a.free[0]
		a.free = a.free[1:]
		return n, nil
	}
	if a.next >= a.maxSupply {
		return 0, schema.ErrSupplyExhausted
	}
	n := a.next
	a.next++
	return n, nil
}

// Release returns a reserved ordinal that did not make it on chain.
func (a *Allocator) Release(ordinal uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, n := range a.free {
		if n == ordinal {
			return
		}
	}
	a.free = append(a.free, ordinal)
	sort.Slice(a.free, func(i, j int) bool { return a.free[i] < a.free[j] })
}

// Observe raises the counter floor from a fresh chain reading. Called by the
// supply watcher job.
func (a *Allocator) Observe(count uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raiseFloor(count)
}

// raiseFloor must run under a.mu. Ordinals below the observed chain count
// are already minted; any such free-list entries are stale.
func (a *Allocator) raiseFloor(count uint64) {
	if count > a.next {
		a.next = count
	}
	i := 0
	for _, n := range a.free {
		if n >= count {
			a.free[i] = n
			i++
		}
	}
	a.free = a.free[:i]
}
