package schema

// TxInfo is the raw balance view of a confirmed transaction, fee payer first
// in AccountKeys.
type TxInfo struct {
	Signature    string
	Fee          uint64
	PreBalances  []int64
	PostBalances []int64
	AccountKeys  []string
}

// TxParticipants is extracted through the jsonParsed lookup path.
type TxParticipants struct {
	FeePayer string
	Signers  []string
	Writable []string
	All      []string
}

type VerifiedPayment struct {
	TxId      string
	Sender    string // fee payer of the payment tx
	Recipient string // configured treasury wallet
	Amount    int64  // lamports, pre - post - fee of the fee payer
	Fee       uint64
}

type Creator struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
}

type MintMetadata struct {
	Name               string    `json:"name"`
	Uri                string    `json:"uri"`
	RoyaltyBasisPoints uint16    `json:"royaltyBasisPoints"`
	Creators           []Creator `json:"creators"`
}

type MintParams struct {
	RecipientWallet string       `json:"recipientWallet"`
	CollectionRef   string       `json:"collectionRef"`
	Ordinal         uint64       `json:"ordinal"`
	Metadata        MintMetadata `json:"metadata"`
}

// LeafInfo identifies the minted leaf inside the collection tree.
type LeafInfo struct {
	Tree      string
	LeafIndex uint64
}
