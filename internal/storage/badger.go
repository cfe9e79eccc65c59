package storage

import (
	"bytes"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aleksaelezovic/sparqlconsole/pkg/store"
)

// BadgerStorage implements Storage using BadgerDB
type BadgerStorage struct {
	db       *badger.DB
	inMemory bool
}

// NewBadgerStorage opens a BadgerDB-backed storage at path. An empty path
// opens an in-memory database.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db, inMemory: path == ""}, nil
}

// Begin starts a new transaction
func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	return &BadgerTransaction{
		txn:      s.db.NewTransaction(writable),
		writable: writable,
	}, nil
}

// Close closes the storage
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk. In-memory databases have nothing to flush.
func (s *BadgerStorage) Sync() error {
	if s.inMemory {
		return nil
	}
	return s.db.Sync()
}

// BadgerTransaction implements Transaction using BadgerDB
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

// Get retrieves a value by key
func (t *BadgerTransaction) Get(table store.Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(store.PrefixKey(table, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set stores a key-value pair
func (t *BadgerTransaction) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Set(store.PrefixKey(table, key), value)
}

// Delete removes a key
func (t *BadgerTransaction) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Delete(store.PrefixKey(table, key))
}

// Scan iterates over a key range [start, end) of one table
func (t *BadgerTransaction) Scan(table store.Table, opts store.ScanOptions) (store.Iterator, error) {
	tablePrefix := store.TablePrefix(table)

	iopts := badger.DefaultIteratorOptions
	iopts.Prefix = tablePrefix
	iopts.Reverse = opts.Reverse

	var startKey, endKey []byte
	if opts.Start != nil {
		startKey = store.PrefixKey(table, opts.Start)
	}
	if opts.End != nil {
		endKey = store.PrefixKey(table, opts.End)
	}

	seekKey := tablePrefix
	if startKey != nil {
		seekKey = startKey
	}
	if opts.Reverse {
		// Seek lands on the largest key <= seekKey
		seekKey = append(append([]byte{}, tablePrefix...), 0xFF)
		if endKey != nil {
			seekKey = endKey
		}
	}

	return &BadgerIterator{
		it:       t.txn.NewIterator(iopts),
		prefix:   tablePrefix,
		startKey: startKey,
		endKey:   endKey,
		seekKey:  seekKey,
		reverse:  opts.Reverse,
	}, nil
}

// Commit commits the transaction
func (t *BadgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback rolls back the transaction
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements Iterator using BadgerDB
type BadgerIterator struct {
	it       *badger.Iterator
	prefix   []byte // Table prefix for stripping from keys
	startKey []byte
	endKey   []byte
	seekKey  []byte
	reverse  bool
	started  bool
	hasValue bool
}

// Next advances to the next item
func (i *BadgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}

	// The end bound is exclusive, so a reverse scan may land on it first
	if i.reverse && i.endKey != nil && i.it.Valid() && bytes.Equal(i.it.Item().Key(), i.endKey) {
		i.it.Next()
	}

	if !i.it.Valid() {
		i.hasValue = false
		return false
	}

	key := i.it.Item().Key()
	if i.endKey != nil && bytes.Compare(key, i.endKey) >= 0 {
		i.hasValue = false
		return false
	}
	if i.startKey != nil && bytes.Compare(key, i.startKey) < 0 {
		i.hasValue = false
		return false
	}

	i.hasValue = true
	return true
}

// Key returns the current key (without the table prefix)
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}

	key := i.it.Item().KeyCopy(nil)
	if len(key) > len(i.prefix) {
		return key[len(i.prefix):]
	}
	return nil
}

// Value returns the current value
func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

// Close closes the iterator
func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}
