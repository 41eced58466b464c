package mintseed

import (
	"context"

	"github.com/mintseed/mintseed/schema"
)

// Ledger is the chain-facing surface the mint pipeline depends on. The
// production implementation is SolanaLedger; tests swap in a stub.
type Ledger interface {
	// LookupTransaction returns balances and account keys of a confirmed
	// transaction, fee payer first. schema.ErrPaymentNotFound when the chain
	// has no record of the id.
	LookupTransaction(ctx context.Context, txId string) (*schema.TxInfo, error)

	// LookupParticipants resolves the same transaction through the
	// jsonParsed rpc path and extracts signer/writable roles.
	LookupParticipants(ctx context.Context, txId string) (*schema.TxParticipants, error)

	// IssuedCount reads the collection tree's mint counter.
	IssuedCount(ctx context.Context) (uint64, error)

	// SubmitMint sends the mint transaction and returns its signature.
	SubmitMint(ctx context.Context, params schema.MintParams) (string, error)

	// Confirm waits until the signature is finalized or ctx expires
	// (schema.ErrConfirmTimeout). LeafInfo.LeafIndex is left for the caller
	// to fill from its reservation; the tree appends leaves sequentially, so
	// the reserved ordinal is the leaf position.
	Confirm(ctx context.Context, sig string) (*schema.LeafInfo, error)

	// DeriveAssetId computes the asset address of a minted leaf.
	DeriveAssetId(leaf *schema.LeafInfo) (string, error)

	// TreasuryWallet is the address mint payments must be sent to.
	TreasuryWallet() string
}

// Bootstrapper covers the one-time collection setup calls behind the admin
// api. Kept apart from Ledger so the mint pipeline cannot reach them.
type Bootstrapper interface {
	CreateTree(ctx context.Context, maxDepth, maxBufferSize uint32, public bool) (addr, sig string, err error)
	CreateCollection(ctx context.Context, name, uri string) (addr, sig string, err error)
}
