// Package kv defines the ordered key-value store boundary the engine runs on.
// Rows and table metadata are plain byte payloads under structured string keys;
// everything the engine needs from a store is point get/set and in-order
// iteration over a key prefix.
package kv

type Entry struct {
	Key   string
	Value []byte
}

// Iterator yields entries in the store's native key order.
// Close must be called when iteration stops early; Next reports
// exhaustion by returning false.
type Iterator interface {
	Next() (Entry, bool)
	Close()
}

type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	// IterPrefix yields exactly the entries whose key starts with prefix.
	IterPrefix(prefix string) Iterator
}
