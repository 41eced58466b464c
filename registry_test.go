package mintseed

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/rawdb"
	"github.com/mintseed/mintseed/schema"
)

func newTestRegistry(t *testing.T) *Registry {
	kv, err := rawdb.NewBoltDB(t.TempDir())
	assert.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewRegistry(kv)
}

func TestRegistryTryConsume(t *testing.T) {
	r := newTestRegistry(t)

	assert.False(t, r.IsConsumed("sig1"))
	assert.NoError(t, r.TryConsume("sig1"))
	assert.True(t, r.IsConsumed("sig1"))

	err := r.TryConsume("sig1")
	assert.ErrorIs(t, err, schema.ErrDuplicatePayment)

	at, err := r.ConsumedAt("sig1")
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), at, time.Minute)
}

func TestRegistryConcurrentConsume(t *testing.T) {
	r := newTestRegistry(t)

	const workers = 20
	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.TryConsume("contested"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}

func TestRegistryCount(t *testing.T) {
	r := newTestRegistry(t)

	for i := 0; i < 5; i++ {
		assert.NoError(t, r.TryConsume(fmt.Sprintf("sig%d", i)))
	}
	n, err := r.Count()
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}
