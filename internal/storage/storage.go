// Package storage provides the durable key/value storage that holds each
// session's theme preference and recent-searches list. Values are read and
// written whole; there are no partial updates.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Namespaced prefixes every key with "<prefix>:" so several sessions can
// share one backend.
type Namespaced struct {
	prefix string
	store  Store
}

func WithNamespace(store Store, prefix string) *Namespaced {
	return &Namespaced{prefix: prefix, store: store}
}

func (n *Namespaced) key(k string) string {
	return n.prefix + ":" + k
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.store.Get(ctx, n.key(key))
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.key(key), value)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.key(key))
}

// Close is a no-op; the shared backend is owned by whoever created it.
func (n *Namespaced) Close() error {
	return nil
}
