package mintseed

import (
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"

	"github.com/mintseed/mintseed/schema"
)

func newTestLedger(t *testing.T) *SolanaLedger {
	signer := types.NewAccount()
	l, err := NewSolanaLedger(
		"http://localhost:8899",
		"",
		base58.Encode(signer.PrivateKey),
		types.NewAccount().PublicKey.ToBase58(),
		types.NewAccount().PublicKey.ToBase58(),
		types.NewAccount().PublicKey.ToBase58(),
	)
	assert.NoError(t, err)
	return l
}

func TestNewSolanaLedgerBadKey(t *testing.T) {
	_, err := NewSolanaLedger("http://localhost:8899", "", "not-a-key", "", "", "")
	assert.Error(t, err)
}

func TestDeriveAssetId(t *testing.T) {
	l := newTestLedger(t)

	id0, err := l.DeriveAssetId(&schema.LeafInfo{Tree: l.tree.ToBase58(), LeafIndex: 0})
	assert.NoError(t, err)
	id1, err := l.DeriveAssetId(&schema.LeafInfo{Tree: l.tree.ToBase58(), LeafIndex: 1})
	assert.NoError(t, err)

	assert.NotEqual(t, id0, id1)
	data, err := base58.Decode(id0)
	assert.NoError(t, err)
	assert.Equal(t, 32, len(data))

	// derivation is a pure function of tree and index
	again, err := l.DeriveAssetId(&schema.LeafInfo{Tree: l.tree.ToBase58(), LeafIndex: 0})
	assert.NoError(t, err)
	assert.Equal(t, id0, again)
}

func TestAnchorDiscriminator(t *testing.T) {
	d := anchorDiscriminator("mint_to_collection_v1")
	assert.Equal(t, 8, len(d))
	assert.Equal(t, d, anchorDiscriminator("mint_to_collection_v1"))
	assert.NotEqual(t, d, anchorDiscriminator("create_tree"))
}

func TestMintToCollectionIx(t *testing.T) {
	l := newTestLedger(t)

	ix, err := l.mintToCollectionIx(schema.MintParams{
		RecipientWallet: types.NewAccount().PublicKey.ToBase58(),
		Ordinal:         7,
		Metadata: schema.MintMetadata{
			Name:               "Seed #0007",
			Uri:                "https://meta.example/m/7.json",
			RoyaltyBasisPoints: 500,
			Creators:           []schema.Creator{{Address: l.treasury.ToBase58(), Verified: true, Share: 100}},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, bubblegumProgram, ix.ProgramID.ToBase58())
	assert.Equal(t, 16, len(ix.Accounts))
	assert.Equal(t, anchorDiscriminator("mint_to_collection_v1"), ix.Data[:8])

	// tree and authority are writable, the recipient only owns the leaf
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.True(t, ix.Accounts[3].IsWritable)
	assert.False(t, ix.Accounts[1].IsSigner)
	assert.True(t, ix.Accounts[4].IsSigner)
}

func TestParseTreeConfigCount(t *testing.T) {
	data := make([]byte, numMintedOffset+8)
	data[numMintedOffset] = 0x2a // 42 le

	n, err := parseTreeConfigCount(data)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	_, err = parseTreeConfigCount(data[:numMintedOffset])
	assert.Error(t, err)
}

func TestMerkleTreeSize(t *testing.T) {
	// depth 14, buffer 64: the standard 16k collection tree
	assert.Equal(t, uint64(31800), merkleTreeSize(14, 64))
	// deeper trees grow linearly in both dimensions
	assert.Greater(t, merkleTreeSize(20, 64), merkleTreeSize(14, 64))
	assert.Greater(t, merkleTreeSize(14, 256), merkleTreeSize(14, 64))
}
