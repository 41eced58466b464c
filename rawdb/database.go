package rawdb

import (
	"github.com/mintseed/mintseed/common"
)

var log = common.NewLog("rawdb")

type KeyValueDB interface {
	Put(bucket, key string, value []byte) (err error)

	// PutIfAbsent stores value only when key does not exist yet and returns
	// schema.ErrAlreadyExist otherwise. The check and the write are a single
	// atomic operation on every backend.
	PutIfAbsent(bucket, key string, value []byte) (err error)

	Get(bucket, key string) (data []byte, err error)

	GetAllKey(bucket string) (keys []string, err error)

	Delete(bucket, key string) (err error)

	Close() (err error)

	Type() string

	Exist(bucket, key string) bool
}
