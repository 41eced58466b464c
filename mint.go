package mintseed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mr-tron/base58"

	"github.com/mintseed/mintseed/schema"
)

const (
	reconcileTimeout = 15 * time.Second

	// a submitted mint with no trace on chain this long afterwards is gone;
	// the blockhash it was built on expired minutes earlier
	staleMintCutoff = 10 * time.Minute
)

// ProcessMint runs one mint request end to end:
// verify payment -> duplicate check -> reserve ordinal -> submit -> confirm.
// The consumed-payment registry is written only after the mint is confirmed;
// a payment whose mint never lands stays retryable.
func (s *Mintseed) ProcessMint(ctx context.Context, req schema.MintReq) (*schema.RespMint, error) {
	paymentId := req.PaymentProofId

	// requests for the same payment id are serialized
	s.payLocker.Lock(paymentId)
	defer s.payLocker.Unlock(paymentId)

	if s.registry.IsConsumed(paymentId) {
		metricMintResult("duplicate")
		return nil, schema.ErrDuplicatePayment
	}

	// a leftover order from an earlier attempt decides how to continue
	if old, err := s.wdb.GetOrderByPayment(paymentId); err == nil {
		switch old.Status {
		case schema.MintConfirmed:
			return nil, schema.ErrDuplicatePayment
		case schema.MintUncertain, schema.MintSubmitted:
			// the earlier submission may still have landed; poll it instead
			// of minting again
			if old.MintSig != "" {
				return s.reconcileOrder(ctx, &old)
			}
		}
		// pending or failed rows are replaced below
	}

	pay, err := s.verifier.Verify(ctx, paymentId, s.cfg.PriceLamports())
	if err != nil {
		metricMintResult("verify_failed")
		return nil, err
	}

	ordinal, err := s.allocator.Reserve(ctx)
	if err != nil {
		if err == schema.ErrSupplyExhausted {
			metricMintResult("supply_exhausted")
		}
		return nil, err
	}

	params := schema.MintParams{
		RecipientWallet: req.RecipientWallet,
		CollectionRef:   s.cfg.NamePrefix,
		Ordinal:         ordinal,
		Metadata: schema.MintMetadata{
			Name:               assetName(s.cfg.NamePrefix, ordinal),
			Uri:                metadataUri(s.cfg.MetadataBase, ordinal),
			RoyaltyBasisPoints: s.cfg.RoyaltyBp,
			Creators:           []schema.Creator{{Address: s.ledger.TreasuryWallet(), Verified: true, Share: 100}},
		},
	}
	rawParams, _ := json.Marshal(params)

	order := &schema.MintOrder{
		PaymentId:   paymentId,
		Recipient:   req.RecipientWallet,
		Ordinal:     ordinal,
		Name:        params.Metadata.Name,
		MetadataUri: params.Metadata.Uri,
		Amount:      pay.Amount,
		Sender:      pay.Sender,
		Status:      schema.MintPending,
		Params:      rawParams,
	}
	if err := s.wdb.SaveOrder(order); err != nil {
		log.Error("s.wdb.SaveOrder(order)", "err", err, "paymentId", paymentId)
		s.allocator.Release(ordinal)
		return nil, err
	}

	sig, err := s.ledger.SubmitMint(ctx, params)
	if err != nil {
		log.Error("s.ledger.SubmitMint(ctx,params)", "err", err, "paymentId", paymentId, "ordinal", ordinal)
		s.allocator.Release(ordinal)
		if uerr := s.wdb.UpdateOrderStatus(order.ID, schema.MintFailed, err.Error()); uerr != nil {
			log.Error("s.wdb.UpdateOrderStatus", "err", uerr, "id", order.ID)
		}
		metricMintResult("submit_failed")
		return nil, schema.ErrMintSubmit
	}
	order.MintSig = sig
	if err := s.wdb.OrderSubmitted(order.ID, sig); err != nil {
		log.Error("s.wdb.OrderSubmitted", "err", err, "id", order.ID)
	}

	// the submitted tx can land even if the caller disconnects, so the wait
	// runs on a detached context with its own bound
	cctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConfirmTimeout)
	defer cancel()
	leaf, err := s.ledger.Confirm(cctx, sig)
	if err != nil {
		if errors.Is(err, schema.ErrConfirmTimeout) {
			// the tx might still confirm out of band; keep the reservation
			// and let reconciliation settle it
			if uerr := s.wdb.UpdateOrderStatus(order.ID, schema.MintUncertain, err.Error()); uerr != nil {
				log.Error("s.wdb.UpdateOrderStatus", "err", uerr, "id", order.ID)
			}
			metricMintResult("uncertain")
			return nil, schema.ErrConfirmTimeout
		}
		log.Error("s.ledger.Confirm(cctx,sig)", "err", err, "sig", sig, "paymentId", paymentId)
		s.allocator.Release(ordinal)
		if uerr := s.wdb.UpdateOrderStatus(order.ID, schema.MintFailed, err.Error()); uerr != nil {
			log.Error("s.wdb.UpdateOrderStatus", "err", uerr, "id", order.ID)
		}
		metricMintResult("confirm_failed")
		return nil, schema.ErrMintSubmit
	}

	return s.finishOrder(order, pay, leaf)
}

// reconcileOrder settles an order whose confirmation was lost: poll the
// stored signature and either finalize or fail it. Resubmission with the
// same payment id becomes a status query here, never a second mint.
func (s *Mintseed) reconcileOrder(ctx context.Context, order *schema.MintOrder) (*schema.RespMint, error) {
	cctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	leaf, err := s.ledger.Confirm(cctx, order.MintSig)
	if err != nil {
		if errors.Is(err, schema.ErrConfirmTimeout) {
			if time.Since(order.CreatedAt) < staleMintCutoff {
				if uerr := s.wdb.UpdateOrderStatus(order.ID, schema.MintUncertain, err.Error()); uerr != nil {
					log.Error("s.wdb.UpdateOrderStatus", "err", uerr, "id", order.ID)
				}
				return nil, schema.ErrConfirmTimeout
			}
			// aged far past blockhash validity with still no status
		}
		log.Warn("uncertain mint dropped on chain", "err", err, "sig", order.MintSig, "paymentId", order.PaymentId)
		s.allocator.Release(order.Ordinal)
		if uerr := s.wdb.UpdateOrderStatus(order.ID, schema.MintFailed, err.Error()); uerr != nil {
			log.Error("s.wdb.UpdateOrderStatus", "err", uerr, "id", order.ID)
		}
		metricMintResult("confirm_failed")
		return nil, schema.ErrMintSubmit
	}

	pay := &schema.VerifiedPayment{
		TxId:      order.PaymentId,
		Sender:    order.Sender,
		Recipient: s.ledger.TreasuryWallet(),
		Amount:    order.Amount,
	}
	return s.finishOrder(order, pay, leaf)
}

func (s *Mintseed) finishOrder(order *schema.MintOrder, pay *schema.VerifiedPayment, leaf *schema.LeafInfo) (*schema.RespMint, error) {
	// the tree appends sequentially, so the reserved ordinal is the leaf position
	leaf.LeafIndex = order.Ordinal

	assetId, err := s.ledger.DeriveAssetId(leaf)
	if err != nil {
		log.Error("s.ledger.DeriveAssetId(leaf)", "err", err, "ordinal", order.Ordinal)
		assetId = ""
	}

	// consumption commits only after the mint is confirmed on chain
	if err := s.registry.TryConsume(order.PaymentId); err != nil && err != schema.ErrDuplicatePayment {
		// the mint is on chain either way; an unreachable store must not
		// hide that from the caller, but it is loud in the logs
		log.Error("s.registry.TryConsume", "err", err, "paymentId", order.PaymentId)
	}
	if err := s.wdb.OrderConfirmed(order.ID, assetId); err != nil {
		log.Error("s.wdb.OrderConfirmed", "err", err, "id", order.ID)
	}

	log.Info("mint confirmed", "name", order.Name, "ordinal", order.Ordinal,
		"recipient", order.Recipient, "sig", order.MintSig)
	metricMintResult("confirmed")
	s.notifyMint(order, assetId)

	return &schema.RespMint{
		Success:  true,
		AssetId:  assetId,
		ImageUrl: imageUrl(s.cfg.ImageBase, order.Ordinal),
		Name:     order.Name,
		Details: schema.MintDetails{
			PaymentVerification: schema.PaymentDetail{
				Sender:        pay.Sender,
				Recipient:     pay.Recipient,
				Amount:        pay.Amount,
				TransactionId: pay.TxId,
			},
		},
	}, nil
}

// assetName renders the ordinal zero padded to four digits; larger ordinals
// widen the field.
func assetName(prefix string, ordinal uint64) string {
	return fmt.Sprintf("%s #%04d", prefix, ordinal)
}

func metadataUri(base string, ordinal uint64) string {
	return fmt.Sprintf("%s/%d.json", strings.TrimSuffix(base, "/"), ordinal)
}

func imageUrl(base string, ordinal uint64) string {
	return fmt.Sprintf("%s/%d.png", strings.TrimSuffix(base, "/"), ordinal)
}

func validWallet(addr string) bool {
	data, err := base58.Decode(addr)
	return err == nil && len(data) == 32
}

// keyedLocker serializes work per key; entries are dropped once unused.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*refLock)}
}

func (l *keyedLocker) Lock(key string) {
	l.mu.Lock()
	rl, ok := l.locks[key]
	if !ok {
		rl = &refLock{}
		l.locks[key] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
}

func (l *keyedLocker) Unlock(key string) {
	l.mu.Lock()
	rl := l.locks[key]
	rl.refs--
	if rl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()

	rl.mu.Unlock()
}
