package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// DocumentHash returns the hex sha256 of a document. Two documents share a hash
// only when they are byte-identical.
func DocumentHash(document string) string {
	hash := sha256.Sum256([]byte(document))
	return hex.EncodeToString(hash[:])
}

// Key namespaces a raw key for the in-memory caches
func Key(namespace, raw string) string {
	return "calais:v1:" + namespace + ":" + DocumentHash(raw)
}
