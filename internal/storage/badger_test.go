package storage

import (
	"errors"
	"testing"

	"github.com/aleksaelezovic/sparqlconsole/pkg/store"
)

func openTestStorage(t *testing.T) *BadgerStorage {
	t.Helper()
	s, err := NewBadgerStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s store.Storage, table store.Table, keys ...string) {
	t.Helper()
	err := store.Update(s, func(txn store.Transaction) error {
		for _, k := range keys {
			if err := txn.Set(table, []byte(k), []byte("v-"+k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
}

func scanKeys(t *testing.T, s store.Storage, table store.Table, opts store.ScanOptions) []string {
	t.Helper()
	var keys []string
	err := store.View(s, func(txn store.Transaction) error {
		it, err := txn.Scan(table, opts)
		if err != nil {
			return err
		}
		defer it.Close()
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to scan: %v", err)
	}
	return keys
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGetSetDelete(t *testing.T) {
	s := openTestStorage(t)
	seed(t, s, store.TableHistory, "a")

	err := store.View(s, func(txn store.Transaction) error {
		v, err := txn.Get(store.TableHistory, []byte("a"))
		if err != nil {
			return err
		}
		if string(v) != "v-a" {
			t.Errorf("expected v-a, got %q", v)
		}
		if _, err := txn.Get(store.TableQueryIndex, []byte("a")); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound from other table, got %v", err)
		}
		if err := txn.Set(store.TableHistory, []byte("b"), nil); !errors.Is(err, store.ErrTransactionRO) {
			t.Errorf("expected ErrTransactionRO, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}

	err = store.Update(s, func(txn store.Transaction) error {
		return txn.Delete(store.TableHistory, []byte("a"))
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if keys := scanKeys(t, s, store.TableHistory, store.ScanOptions{}); len(keys) != 0 {
		t.Errorf("expected empty table, got %v", keys)
	}
}

func TestScan(t *testing.T) {
	s := openTestStorage(t)
	seed(t, s, store.TableHistory, "a", "b", "c", "d", "e")
	seed(t, s, store.TableQueryIndex, "x", "y")

	tests := []struct {
		name string
		opts store.ScanOptions
		want []string
	}{
		{"full", store.ScanOptions{}, []string{"a", "b", "c", "d", "e"}},
		{"from b", store.ScanOptions{Start: []byte("b")}, []string{"b", "c", "d", "e"}},
		{"until d", store.ScanOptions{End: []byte("d")}, []string{"a", "b", "c"}},
		{"b to d", store.ScanOptions{Start: []byte("b"), End: []byte("d")}, []string{"b", "c"}},
		{"reverse", store.ScanOptions{Reverse: true}, []string{"e", "d", "c", "b", "a"}},
		{"reverse until d", store.ScanOptions{End: []byte("d"), Reverse: true}, []string{"c", "b", "a"}},
		{"reverse b to d", store.ScanOptions{Start: []byte("b"), End: []byte("d"), Reverse: true}, []string{"c", "b"}},
		{"reverse missing end", store.ScanOptions{End: []byte("cc"), Reverse: true}, []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanKeys(t, s, store.TableHistory, tt.opts)
			if !equalKeys(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := openTestStorage(t)

	boom := errors.New("boom")
	err := store.Update(s, func(txn store.Transaction) error {
		if err := txn.Set(store.TableHistory, []byte("k"), []byte("v")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if keys := scanKeys(t, s, store.TableHistory, store.ScanOptions{}); len(keys) != 0 {
		t.Errorf("expected rollback, got %v", keys)
	}
}

func TestInMemory(t *testing.T) {
	s, err := NewBadgerStorage("")
	if err != nil {
		t.Fatalf("failed to open in-memory storage: %v", err)
	}
	defer s.Close()

	seed(t, s, store.TableHistory, "only")
	if err := s.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if keys := scanKeys(t, s, store.TableHistory, store.ScanOptions{}); !equalKeys(keys, []string{"only"}) {
		t.Errorf("unexpected keys %v", keys)
	}
}
