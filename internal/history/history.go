package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/sparqlconsole/internal/encoding"
	"github.com/aleksaelezovic/sparqlconsole/pkg/store"
)

// Entry is one executed query
type Entry struct {
	ID        uuid.UUID     `json:"id"`
	Query     string        `json:"query"`
	QueryType string        `json:"queryType"`
	Dataset   string        `json:"dataset"`
	Rows      int           `json:"rows"`
	Duration  time.Duration `json:"durationNs"`
	Error     string        `json:"error,omitempty"`
	RunCount  int           `json:"runCount"`
	At        time.Time     `json:"at"`
}

// History stores executed queries. Re-running the same query on the same
// dataset replaces the earlier entry and bumps its run count.
type History struct {
	storage store.Storage
	mu      sync.Mutex
}

// New creates a history on top of storage
func New(storage store.Storage) *History {
	return &History{storage: storage}
}

// Record stores e and returns the stored entry with its ID, time and run
// count filled in
func (h *History) Record(e Entry) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to generate entry id: %w", err)
	}
	sec, nsec := id.Time().UnixTime()
	e.ID = id
	e.At = time.Unix(sec, nsec).UTC()
	e.RunCount = 1

	indexKey := encoding.QueryKey(e.Dataset, e.Query)

	err = store.Update(h.storage, func(txn store.Transaction) error {
		prevKey, err := txn.Get(store.TableQueryIndex, indexKey)
		switch {
		case err == nil:
			if prev, err := getEntry(txn, prevKey); err == nil {
				e.RunCount = prev.RunCount + 1
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if err := txn.Delete(store.TableHistory, prevKey); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode entry: %w", err)
		}
		key := encoding.EntryKey(e.ID)
		if err := txn.Set(store.TableHistory, key, data); err != nil {
			return err
		}
		return txn.Set(store.TableQueryIndex, indexKey, key)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record history entry: %w", err)
	}
	return e, nil
}

func getEntry(txn store.Transaction, key []byte) (Entry, error) {
	data, err := txn.Get(store.TableHistory, key)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to decode entry: %w", err)
	}
	return e, nil
}

// Get returns the entry with the given ID
func (h *History) Get(id uuid.UUID) (Entry, error) {
	var e Entry
	err := store.View(h.storage, func(txn store.Transaction) error {
		var err error
		e, err = getEntry(txn, encoding.EntryKey(id))
		return err
	})
	return e, err
}

// List returns up to limit entries, newest first. A non-positive limit
// returns all entries.
func (h *History) List(limit int) ([]Entry, error) {
	entries := []Entry{}
	err := store.View(h.storage, func(txn store.Transaction) error {
		it, err := txn.Scan(store.TableHistory, store.ScanOptions{Reverse: true})
		if err != nil {
			return err
		}
		defer it.Close()

		for it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			data, err := it.Value()
			if err != nil {
				return err
			}
			var e Entry
			if err := json.Unmarshal(data, &e); err != nil {
				log.Printf("Skipping corrupt history entry %x: %v", it.Key(), err)
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries recorded before cutoff and returns how many were
// removed. Entries are selected by the time stamp embedded in their ID.
func (h *History) Prune(cutoff time.Time) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var stale []Entry
	var staleKeys [][]byte
	err := store.View(h.storage, func(txn store.Transaction) error {
		it, err := txn.Scan(store.TableHistory, store.ScanOptions{End: encoding.TimeKey(cutoff.UnixMilli())})
		if err != nil {
			return err
		}
		defer it.Close()

		for it.Next() {
			key := it.Key()
			data, err := it.Value()
			if err != nil {
				return err
			}
			var e Entry
			if err := json.Unmarshal(data, &e); err != nil {
				log.Printf("Pruning corrupt history entry %x: %v", key, err)
			}
			stale = append(stale, e)
			staleKeys = append(staleKeys, key)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan history: %w", err)
	}
	if len(staleKeys) == 0 {
		return 0, nil
	}

	err = store.Update(h.storage, func(txn store.Transaction) error {
		for i, key := range staleKeys {
			if err := txn.Delete(store.TableHistory, key); err != nil {
				return err
			}
			indexKey := encoding.QueryKey(stale[i].Dataset, stale[i].Query)
			current, err := txn.Get(store.TableQueryIndex, indexKey)
			if err == nil && string(current) == string(key) {
				if err := txn.Delete(store.TableQueryIndex, indexKey); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return len(staleKeys), nil
}

// Sync flushes the underlying storage
func (h *History) Sync() error {
	return h.storage.Sync()
}
