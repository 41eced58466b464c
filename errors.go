package mintseed

import (
	"errors"
	"net/http"
	"time"

	"github.com/mintseed/mintseed/schema"
)

// respError maps a pipeline error to its http status and structured error
// body. Unclassified errors collapse to a generic internal failure; their
// detail stays in the logs.
func respError(err error, txid string) (int, schema.RespErr) {
	obj := schema.ErrObj{
		Txid:      txid,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, schema.ErrPaymentMismatch):
		status = http.StatusConflict
		obj.Code = schema.CodePaymentMismatch
		obj.Message = "payment amount does not match the mint price"
		obj.Resolution = "send the exact mint price and retry with the new transaction"
	case errors.Is(err, schema.ErrPaymentNotFound), errors.Is(err, schema.ErrPaymentLookup):
		status = http.StatusBadRequest
		obj.Code = schema.CodeVerifyFailed
		obj.Message = "could not verify the payment transaction"
	case errors.Is(err, schema.ErrDuplicatePayment):
		status = http.StatusConflict
		obj.Code = schema.CodeDuplicateTx
		obj.Message = "this transaction ID has already been used"
		obj.Resolution = "use a new, unique transaction"
	case errors.Is(err, schema.ErrSupplyExhausted):
		status = http.StatusGone
		obj.Code = schema.CodeLimitReached
		obj.Message = "max supply reached"
		obj.Resolution = "contact admin for the refund"
	case errors.Is(err, schema.ErrMintSubmit):
		status = http.StatusInternalServerError
		obj.Code = schema.CodeMintFailed
		obj.Message = "mint failed"
		obj.Resolution = "the payment was not consumed, retry with the same transaction"
	case errors.Is(err, schema.ErrConfirmTimeout):
		status = http.StatusAccepted
		obj.Code = schema.CodeConfirmPending
		obj.Message = "mint submitted, confirmation still pending"
		obj.Resolution = "retry with the same transaction ID to check the result"
	default:
		obj.Code = schema.CodeInternal
		obj.Message = "internal server error"
	}

	return status, schema.RespErr{Success: false, Error: obj}
}
