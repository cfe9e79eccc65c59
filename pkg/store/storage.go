package store

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error

	// Sync flushes writes to disk
	Sync() error
}

// Transaction represents a database transaction with snapshot isolation
type Transaction interface {
	Get(table Table, key []byte) ([]byte, error)
	Set(table Table, key, value []byte) error
	Delete(table Table, key []byte) error

	// Scan iterates over the keys of a table in [opts.Start, opts.End).
	// A nil bound is open. With opts.Reverse the largest key comes first.
	Scan(table Table, opts ScanOptions) (Iterator, error)

	Commit() error
	Rollback() error
}

// ScanOptions bounds a table scan
type ScanOptions struct {
	Start   []byte
	End     []byte
	Reverse bool
}

// Iterator iterates over key-value pairs
type Iterator interface {
	// Next advances to the next item
	Next() bool

	// Key returns the current key without the table prefix
	Key() []byte

	// Value returns a copy of the current value
	Value() ([]byte, error)

	// Close closes the iterator
	Close() error
}

// Table is a logical table in the storage
type Table byte

const (
	// History entries: entry ID (UUIDv7, time ordered) -> encoded entry
	TableHistory Table = iota + 1

	// Query index: xxh3 of dataset and query text -> entry ID
	TableQueryIndex

	// Total number of tables
	TableCount
)

func (t Table) String() string {
	switch t {
	case TableHistory:
		return "history"
	case TableQueryIndex:
		return "query_index"
	default:
		return "unknown"
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}

// Update runs fn in a writable transaction and commits it unless fn fails
func Update(s Storage, fn func(Transaction) error) error {
	txn, err := s.Begin(true)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		_ = txn.Rollback()
		return err
	}
	return txn.Commit()
}

// View runs fn in a read-only transaction
func View(s Storage, fn func(Transaction) error) error {
	txn, err := s.Begin(false)
	if err != nil {
		return err
	}
	defer func() { _ = txn.Rollback() }()
	return fn(txn)
}
