package schema

var (
	// bucket
	ConsumedPaymentBucket = "consumed-payment-bucket" // key: payment txid, val: consumed time (RFC3339)
	ConstantsBucket       = "constants-bucket"
)
