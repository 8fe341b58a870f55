package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerCache stores entries in an embedded badger database. Expiry is
// handled by badger's native entry TTL.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database that is discarded on Close.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db}, nil
}

// Get returns the entry under key.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key with the given ttl.
func (c *BadgerCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes the entry under key.
func (c *BadgerCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BadgerCache)(nil)
