package mintseed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/schema"
)

func newTestWdb(t *testing.T) *Wdb {
	w := NewSqliteDb(t.TempDir())
	assert.NoError(t, w.Migrate())
	t.Cleanup(w.Close)
	return w
}

func TestOrderLifecycle(t *testing.T) {
	w := newTestWdb(t)

	order := &schema.MintOrder{
		PaymentId: "pay1",
		Recipient: testBuyer,
		Ordinal:   3,
		Name:      "Seed #0003",
		Status:    schema.MintPending,
	}
	assert.NoError(t, w.SaveOrder(order))
	assert.NotZero(t, order.ID)

	assert.NoError(t, w.OrderSubmitted(order.ID, "sig1"))
	got, err := w.GetOrderByPayment("pay1")
	assert.NoError(t, err)
	assert.Equal(t, schema.MintSubmitted, got.Status)
	assert.Equal(t, "sig1", got.MintSig)

	assert.NoError(t, w.OrderConfirmed(order.ID, "asset1"))
	got, err = w.GetOrderByPayment("pay1")
	assert.NoError(t, err)
	assert.Equal(t, schema.MintConfirmed, got.Status)
	assert.Equal(t, "asset1", got.AssetId)

	n, err := w.ConfirmedCount()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveOrderReplacesFailedRow(t *testing.T) {
	w := newTestWdb(t)

	first := &schema.MintOrder{
		PaymentId: "pay1",
		Recipient: testBuyer,
		Ordinal:   1,
		Status:    schema.MintFailed,
		ErrMsg:    "node unreachable",
	}
	assert.NoError(t, w.SaveOrder(first))

	second := &schema.MintOrder{
		PaymentId: "pay1",
		Recipient: testBuyer,
		Ordinal:   2,
		Status:    schema.MintPending,
	}
	assert.NoError(t, w.SaveOrder(second))

	got, err := w.GetOrderByPayment("pay1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), got.Ordinal)
	assert.Equal(t, schema.MintPending, got.Status)

	orders, err := w.GetOrdersByStatus(schema.MintFailed)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(orders))
}

func TestSaveOrderKeepsRowIdentity(t *testing.T) {
	w := newTestWdb(t)

	failed := &schema.MintOrder{
		PaymentId: "pay1",
		Recipient: testBuyer,
		Status:    schema.MintFailed,
	}
	assert.NoError(t, w.SaveOrder(failed))
	other := &schema.MintOrder{
		PaymentId: "pay2",
		Recipient: testBuyer,
		Status:    schema.MintConfirmed,
	}
	assert.NoError(t, w.SaveOrder(other))

	// the upsert takes the update branch; the returned ID must still be
	// pay1's row, not the last inserted one
	retry := &schema.MintOrder{
		PaymentId: "pay1",
		Recipient: testBuyer,
		Status:    schema.MintPending,
	}
	assert.NoError(t, w.SaveOrder(retry))
	assert.Equal(t, failed.ID, retry.ID)
	assert.NotEqual(t, other.ID, retry.ID)

	// status updates keyed by that ID land on the right row
	assert.NoError(t, w.OrderSubmitted(retry.ID, "sig-retry"))
	got, err := w.GetOrderByPayment("pay1")
	assert.NoError(t, err)
	assert.Equal(t, "sig-retry", got.MintSig)
	got, err = w.GetOrderByPayment("pay2")
	assert.NoError(t, err)
	assert.Equal(t, "", got.MintSig)
}

func TestGetOrdersByStatus(t *testing.T) {
	w := newTestWdb(t)

	for i := 0; i < 3; i++ {
		status := schema.MintUncertain
		if i == 2 {
			status = schema.MintConfirmed
		}
		assert.NoError(t, w.SaveOrder(&schema.MintOrder{
			PaymentId: fmt.Sprintf("pay%d", i),
			Recipient: testBuyer,
			Status:    status,
		}))
	}

	orders, err := w.GetOrdersByStatus(schema.MintUncertain)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(orders))
}

func TestGetOrdersByRecipient(t *testing.T) {
	w := newTestWdb(t)

	for i := 0; i < 5; i++ {
		assert.NoError(t, w.SaveOrder(&schema.MintOrder{
			PaymentId: fmt.Sprintf("pay%d", i),
			Recipient: testBuyer,
			Ordinal:   uint64(i),
			Status:    schema.MintConfirmed,
		}))
	}
	assert.NoError(t, w.SaveOrder(&schema.MintOrder{
		PaymentId: "other",
		Recipient: testTreasury,
		Status:    schema.MintConfirmed,
	}))

	orders, err := w.GetOrdersByRecipient(testBuyer, 0, 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(orders))

	// cursor paging continues after the last seen id
	rest, err := w.GetOrdersByRecipient(testBuyer, orders[2].ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(rest))
	for _, ord := range rest {
		assert.Greater(t, ord.ID, orders[2].ID)
	}
}
