package mintseed

import (
	"time"

	"github.com/mintseed/mintseed/rawdb"
	"github.com/mintseed/mintseed/schema"
)

// Registry records payment signatures that have already been exchanged for a
// confirmed mint. A signature enters the registry exactly once and never
// leaves it.
type Registry struct {
	kv rawdb.KeyValueDB
}

func NewRegistry(kv rawdb.KeyValueDB) *Registry {
	return &Registry{kv: kv}
}

func (r *Registry) IsConsumed(paymentId string) bool {
	return r.kv.Exist(schema.ConsumedPaymentBucket, paymentId)
}

// TryConsume marks paymentId consumed. The check and the mark are one atomic
// store operation; concurrent callers get schema.ErrDuplicatePayment for all
// but the first.
func (r *Registry) TryConsume(paymentId string) error {
	val := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	err := r.kv.PutIfAbsent(schema.ConsumedPaymentBucket, paymentId, val)
	if err == schema.ErrAlreadyExist {
		return schema.ErrDuplicatePayment
	}
	return err
}

func (r *Registry) ConsumedAt(paymentId string) (time.Time, error) {
	data, err := r.kv.Get(schema.ConsumedPaymentBucket, paymentId)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, string(data))
}

func (r *Registry) Count() (int, error) {
	keys, err := r.kv.GetAllKey(schema.ConsumedPaymentBucket)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
