package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/schema"
)

func TestNewAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	c := New("", dir, true, Params{PriceLamports: 100000000})
	defer c.Close()

	assert.Equal(t, uint64(schema.DefaultMaxSupply), c.MaxSupply)
	assert.Equal(t, uint16(schema.DefaultRoyaltyBp), c.RoyaltyBp)
	assert.Equal(t, time.Duration(schema.DefaultConfirmTimeout), c.ConfirmTimeout)
	assert.Equal(t, int64(100000000), c.PriceLamports())
}

func TestSetPricePersists(t *testing.T) {
	dir := t.TempDir()
	c := New("", dir, true, Params{PriceLamports: 100000000})

	assert.NoError(t, c.SetPrice(250000000))
	assert.Equal(t, int64(250000000), c.PriceLamports())
	c.Close()

	// a restart loads the stored price, not the seed value
	c2 := New("", dir, true, Params{PriceLamports: 100000000})
	defer c2.Close()
	assert.Equal(t, int64(250000000), c2.PriceLamports())
}
