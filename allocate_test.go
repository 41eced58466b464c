package mintseed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/schema"
)

func TestAllocatorReserve(t *testing.T) {
	ledger := &mockLedger{
		issuedCount: func() (uint64, error) { return 5, nil },
	}
	a := NewAllocator(ledger, 10)

	n, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	n, err = a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), n)
}

func TestAllocatorSupplyBoundary(t *testing.T) {
	count := uint64(8)
	ledger := &mockLedger{
		issuedCount: func() (uint64, error) { return count, nil },
	}
	a := NewAllocator(ledger, 10)

	// 8 and 9 are the last two positions
	n, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint64(8), n)

	n, err = a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), n)

	_, err = a.Reserve(context.Background())
	assert.ErrorIs(t, err, schema.ErrSupplyExhausted)
}

func TestAllocatorReleaseReuse(t *testing.T) {
	a := NewAllocator(&mockLedger{}, 10)

	n1, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	n2, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, n1+1, n2)

	a.Release(n1)
	a.Release(n1) // double release is a no-op

	n3, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, n1, n3)

	n4, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, n2+1, n4)
}

func TestAllocatorObserve(t *testing.T) {
	a := NewAllocator(&mockLedger{}, 100)

	n1, _ := a.Reserve(context.Background())
	n2, _ := a.Reserve(context.Background())
	a.Release(n1)
	a.Release(n2)

	// the chain moved past both released positions; they are stale now
	a.Observe(50)

	n, err := a.Reserve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint64(50), n)
}

func TestAllocatorConcurrentReserve(t *testing.T) {
	a := NewAllocator(&mockLedger{}, 1000)

	const workers = 50
	got := make([]uint64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := a.Reserve(context.Background())
			assert.NoError(t, err)
			got[i] = n
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, workers)
	for _, n := range got {
		assert.False(t, seen[n], "ordinal %d handed out twice", n)
		seen[n] = true
	}
}
