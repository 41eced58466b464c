package schema

type MintReq struct {
	RecipientWallet string `json:"recipientWallet"`
	PaymentProofId  string `json:"paymentProofId"`
}

type RespMint struct {
	Success  bool        `json:"success"`
	AssetId  string      `json:"assetId"`
	ImageUrl string      `json:"imageUrl"`
	Name     string      `json:"name"`
	Details  MintDetails `json:"details"`
}

type MintDetails struct {
	PaymentVerification PaymentDetail `json:"paymentVerification"`
}

type PaymentDetail struct {
	Sender        string `json:"sender"`
	Recipient     string `json:"recipient"`
	Amount        int64  `json:"amount"` // lamports
	TransactionId string `json:"transactionId"`
}

// machine readable error codes returned by the mint api
const (
	CodePaymentMismatch = "PAYMENT_MISMATCH"
	CodeVerifyFailed    = "TRANSACTION_VERIFICATION_FAILED"
	CodeDuplicateTx     = "DUPLICATE_TRANSACTION"
	CodeLimitReached    = "LIMIT_REACHED"
	CodeMintFailed      = "MINT_FAILED"
	CodeConfirmPending  = "CONFIRMATION_PENDING"
	CodeInternal        = "INTERNAL_ERROR"
)

type RespErr struct {
	Success bool   `json:"success"` // always false
	Error   ErrObj `json:"error"`
}

type ErrObj struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Txid       string `json:"txid,omitempty"`
	Timestamp  string `json:"timestamp"`
	Resolution string `json:"resolution,omitempty"`
}

type RespInfo struct {
	Collection    string `json:"collection"`
	Tree          string `json:"tree"`
	Treasury      string `json:"treasury"`
	Issued        uint64 `json:"issued"`
	MaxSupply     uint64 `json:"maxSupply"`
	PriceLamports int64  `json:"priceLamports"`
	PriceSol      string `json:"priceSol"`
}

type RespAdminTx struct {
	Success   bool   `json:"success"`
	Address   string `json:"address"` // created account (tree or collection mint)
	Signature string `json:"signature"`
}

type MintEvent struct {
	ID        string `json:"id"` // event uuid
	Ordinal   uint64 `json:"ordinal"`
	Name      string `json:"name"`
	AssetId   string `json:"assetId"`
	Recipient string `json:"recipient"`
	MintSig   string `json:"mintSig"`
	PaymentId string `json:"paymentId"`
	Timestamp string `json:"timestamp"`
}
