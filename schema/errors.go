package schema

import (
	"errors"
)

var (
	ErrNotExist     = errors.New("not_exist_record")
	ErrAlreadyExist = errors.New("already_exist_record")
	ErrNotImplement = errors.New("method not implement")

	ErrPaymentNotFound = errors.New("payment_not_found")
	ErrPaymentMismatch = errors.New("payment_amount_mismatch")
	ErrPaymentLookup   = errors.New("payment_lookup_failed")

	ErrDuplicatePayment = errors.New("duplicate_payment")
	ErrSupplyExhausted  = errors.New("supply_exhausted")
	ErrMintSubmit       = errors.New("mint_submit_failed")
	ErrConfirmTimeout   = errors.New("mint_confirm_timeout")
)
