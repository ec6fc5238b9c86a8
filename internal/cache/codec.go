package cache

import "github.com/vmihailenco/msgpack/v5"

// Cached values are msgpack-encoded. The encoding is opaque to callers;
// the only contract is that an entity round-trips its shape.

// Marshal encodes a value for storage in the cache.
func Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes a cached value.
func Unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
