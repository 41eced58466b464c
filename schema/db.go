package schema

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// mint order status
	MintPending   = "pending"
	MintSubmitted = "submitted"
	MintConfirmed = "confirmed"
	MintFailed    = "failed"
	MintUncertain = "uncertain" // submitted but confirmation timed out; reconciled by job

	DefaultMaxSupply      = 10000
	DefaultRoyaltyBp      = 500
	DefaultConfirmTimeout = 60 * time.Second
)

type MintOrder struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PaymentId string `gorm:"uniqueIndex:idx_payment" json:"paymentId"` // payment tx signature
	Recipient string `gorm:"index:idx_recipient" json:"recipient"`     // leaf owner wallet

	Ordinal     uint64 `json:"ordinal"`
	Name        string `json:"name"`
	MetadataUri string `json:"metadataUri"`

	Amount int64  `json:"amount"` // verified payment amount, lamports
	Sender string `json:"sender"` // payment fee payer

	MintSig string `gorm:"index:idx_sig" json:"mintSig"`
	AssetId string `json:"assetId"`

	Status string         `json:"status"` // "pending","submitted","confirmed","failed","uncertain"
	ErrMsg string         `json:"-"`
	Params datatypes.JSON `json:"-"` // json.marshal(MintParams) as submitted
}

type Price struct {
	ID        uint  `gorm:"primarykey"`
	Lamports  int64 // exact price per mint
	UpdatedAt time.Time
}
