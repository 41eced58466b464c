package mintseed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/shopspring/decimal"

	"github.com/mintseed/mintseed/schema"
)

var lamportsPerSol = decimal.New(1, 9)

// Verifier checks that a claimed payment really transferred the exact mint
// price. A confirmed transaction never changes, so lookups are cached.
type Verifier struct {
	ledger Ledger
	cache  *bigcache.BigCache
}

func NewVerifier(ledger Ledger) *Verifier {
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(10*time.Minute))
	if err != nil {
		panic(err)
	}
	return &Verifier{
		ledger: ledger,
		cache:  cache,
	}
}

// Verify resolves paymentId on chain and checks the fee payer transferred
// exactly expected lamports. Overpayment is rejected the same as
// underpayment.
func (v *Verifier) Verify(ctx context.Context, paymentId string, expected int64) (*schema.VerifiedPayment, error) {
	info, err := v.lookup(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	if len(info.AccountKeys) == 0 || len(info.PreBalances) == 0 || len(info.PostBalances) == 0 {
		log.Error("payment tx missing balance meta", "paymentId", paymentId)
		return nil, schema.ErrPaymentLookup
	}

	// amount sent by the fee payer, minus the network fee
	amount := info.PreBalances[0] - info.PostBalances[0] - int64(info.Fee)
	if amount != expected {
		log.Warn("payment amount mismatch", "paymentId", paymentId,
			"got", lamportsToSol(amount), "want", lamportsToSol(expected))
		return nil, schema.ErrPaymentMismatch
	}

	// second lookup path; only needs to resolve without error
	if _, err := v.ledger.LookupParticipants(ctx, paymentId); err != nil {
		log.Error("participant lookup failed", "err", err, "paymentId", paymentId)
		if err == schema.ErrPaymentNotFound {
			return nil, err
		}
		return nil, schema.ErrPaymentLookup
	}

	return &schema.VerifiedPayment{
		TxId:      paymentId,
		Sender:    info.AccountKeys[0],
		Recipient: v.ledger.TreasuryWallet(),
		Amount:    amount,
		Fee:       info.Fee,
	}, nil
}

func (v *Verifier) lookup(ctx context.Context, paymentId string) (*schema.TxInfo, error) {
	if data, err := v.cache.Get(paymentId); err == nil {
		info := &schema.TxInfo{}
		if err := json.Unmarshal(data, info); err == nil {
			return info, nil
		}
	}

	info, err := v.ledger.LookupTransaction(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(info); err == nil {
		_ = v.cache.Set(paymentId, data)
	}
	return info, nil
}

func lamportsToSol(lamports int64) string {
	return decimal.NewFromInt(lamports).Div(lamportsPerSol).String() + " SOL"
}
