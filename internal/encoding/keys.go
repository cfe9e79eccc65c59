package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

const (
	// QueryKeySize is the size of a query index key (128-bit hash)
	QueryKeySize = 16

	// EntryKeySize is the size of a history entry key (UUID bytes)
	EntryKeySize = 16
)

// Hash128 computes a 128-bit xxhash3 hash of the input string
func Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// QueryKey returns the index key of a query text run against a dataset.
// The dataset is length-prefixed so that no two pairs share an input.
func QueryKey(dataset, query string) []byte {
	key := Hash128(fmt.Sprintf("%d:%s%s", len(dataset), dataset, query))
	return key[:]
}

// EntryKey returns the storage key of a history entry. UUIDv7 IDs sort by
// creation time, so a key scan yields entries in chronological order.
func EntryKey(id uuid.UUID) []byte {
	key := make([]byte, EntryKeySize)
	copy(key, id[:])
	return key
}

// DecodeEntryKey converts a storage key back to an entry ID
func DecodeEntryKey(key []byte) (uuid.UUID, error) {
	if len(key) != EntryKeySize {
		return uuid.Nil, fmt.Errorf("invalid entry key length %d", len(key))
	}
	return uuid.FromBytes(key)
}

// TimeKey returns the smallest entry key created at or after t. It is used
// as a scan bound: UUIDv7 keys start with a 48-bit Unix millisecond stamp.
func TimeKey(ms int64) []byte {
	key := make([]byte, EntryKeySize)
	var stamp [8]byte
	binary.BigEndian.PutUint64(stamp[:], uint64(ms))
	copy(key[0:6], stamp[2:8])
	return key
}
