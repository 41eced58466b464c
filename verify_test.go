package mintseed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/schema"
)

func TestVerifyExactAmount(t *testing.T) {
	v := NewVerifier(&mockLedger{})

	pay, err := v.Verify(context.Background(), "tx1", testPrice)
	assert.NoError(t, err)
	assert.Equal(t, "tx1", pay.TxId)
	assert.Equal(t, testBuyer, pay.Sender)
	assert.Equal(t, testTreasury, pay.Recipient)
	assert.Equal(t, testPrice, pay.Amount)
}

func TestVerifyAmountMismatch(t *testing.T) {
	for _, amount := range []int64{testPrice - 1, testPrice + 1, 0} {
		v := NewVerifier(&mockLedger{
			lookupTx: func(txId string) (*schema.TxInfo, error) {
				return paidTx(txId, amount), nil
			},
		})
		_, err := v.Verify(context.Background(), "tx1", testPrice)
		assert.ErrorIs(t, err, schema.ErrPaymentMismatch)
	}
}

func TestVerifyNotFound(t *testing.T) {
	v := NewVerifier(&mockLedger{
		lookupTx: func(txId string) (*schema.TxInfo, error) {
			return nil, schema.ErrPaymentNotFound
		},
	})
	_, err := v.Verify(context.Background(), "ghost", testPrice)
	assert.ErrorIs(t, err, schema.ErrPaymentNotFound)
}

func TestVerifyParticipantLookupMustResolve(t *testing.T) {
	v := NewVerifier(&mockLedger{
		lookupParts: func(txId string) (*schema.TxParticipants, error) {
			return nil, errors.New("rpc node down")
		},
	})
	_, err := v.Verify(context.Background(), "tx1", testPrice)
	assert.ErrorIs(t, err, schema.ErrPaymentLookup)
}

func TestVerifyMissingMeta(t *testing.T) {
	v := NewVerifier(&mockLedger{
		lookupTx: func(txId string) (*schema.TxInfo, error) {
			return &schema.TxInfo{Signature: txId}, nil
		},
	})
	_, err := v.Verify(context.Background(), "tx1", testPrice)
	assert.ErrorIs(t, err, schema.ErrPaymentLookup)
}

func TestVerifyCachesLookup(t *testing.T) {
	calls := 0
	v := NewVerifier(&mockLedger{
		lookupTx: func(txId string) (*schema.TxInfo, error) {
			calls++
			return paidTx(txId, testPrice), nil
		},
	})

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), "tx1", testPrice)
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestLamportsToSol(t *testing.T) {
	assert.Equal(t, "0.1 SOL", lamportsToSol(100000000))
	assert.Equal(t, "1 SOL", lamportsToSol(1000000000))
	assert.Equal(t, "0.000000001 SOL", lamportsToSol(1))
}
