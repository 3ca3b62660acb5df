// Package badger implements the repository interfaces on an embedded Badger
// key-value store. Each document is JSON under a typed key prefix:
//
//	post:<id>      → model.PostRecord (comments embedded)
//	user:<uid>     → model.UserRecord
//	featured:<id>  → model.FeaturedPost
//	feedback:<id>  → model.Feedback
//
// Mutations run inside one read-modify-write transaction. Badger aborts a
// transaction with ErrConflict when another commit touched the same key, and
// update retries it, so concurrent likes and comment appends are never lost.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/sakif/bloom/internal/repository"
)

const (
	postKeyPrefix     = "post:"
	userKeyPrefix     = "user:"
	featuredKeyPrefix = "featured:"
	feedbackKeyPrefix = "feedback:"

	maxConflictRetries = 50
)

var _ repository.Store = (*DB)(nil)

// DB wraps a Badger database.
type DB struct {
	db *badger.DB
}

// New opens (or creates) a Badger database in dir.
func New(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	return open(opts)
}

// NewInMemory opens a Badger database that lives only in memory.
func NewInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: opening database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close flushes and closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (d *DB) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := d.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
	}
}

// getJSON loads key into v. It returns badger.ErrKeyNotFound untouched so
// callers can translate it into a domain error.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := marshalEntity(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// scanPrefix decodes every value under prefix, calling fn with a fresh
// decoder target each time.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func marshalEntity(entity any) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

func unmarshalEntity(data []byte, entity any) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
