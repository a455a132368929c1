// Package kv is the durable client storage: a string-keyed table in the local
// sqlite database. The session store keeps the auth token and the serialized
// user profile here.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Repository interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
