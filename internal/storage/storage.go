// Package storage provides the string-keyed blob storage the request store
// persists into, shaped like a mobile device's key-value storage.
package storage

import "errors"

var ErrNotFound = errors.New("storage: key not found")

type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
