package worker

import (
	"time"

	"bilancio/internal/cache"
)

const (
	DefaultTombstoneSize = 100000
	DefaultTombstoneTTL  = 72 * time.Hour
)

// Tombstones remembers deleted transaction ids so that a create redelivered
// after its delete does not bring the row back.
type Tombstones interface {
	Bury(userID, id string)
	Buried(userID, id string) bool
}

// CacheTombstones keeps markers in a bounded LRU. Markers expire after the
// TTL, which must exceed the longest time an event can sit requeued.
type CacheTombstones struct {
	lru *cache.LRUCache[struct{}]
}

func NewCacheTombstones(size int, ttl time.Duration) *CacheTombstones {
	return &CacheTombstones{lru: cache.NewLRUCache[struct{}](size, ttl)}
}

func tombstoneKey(userID, id string) string { return userID + "|" + id }

func (t *CacheTombstones) Bury(userID, id string) {
	t.lru.Set(tombstoneKey(userID, id), struct{}{})
}

func (t *CacheTombstones) Buried(userID, id string) bool {
	_, ok := t.lru.Get(tombstoneKey(userID, id))
	return ok
}

// CleanExpired lets a cache.Manager sweep expired markers.
func (t *CacheTombstones) CleanExpired() int { return t.lru.CleanExpired() }
