package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SettledCache remembers transaction ids that reached a terminal payment
// state recently. The reconciler consults it before touching the database so
// that gateway webhook retries (which arrive in bursts) short-circuit cheaply.
// The database CAS remains the source of truth; a cache miss is always safe.
type SettledCache struct {
	cache *cache.Cache
}

func NewSettledCache() *SettledCache {
	// Gateways stop retrying within a day; an hour of memory covers the
	// burst window, purge sweep every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SettledCache{
		cache: c,
	}
}

func (r *SettledCache) MarkSettled(transactionId string, status string) {
	r.cache.Set(transactionId, status, cache.DefaultExpiration)
}

func (r *SettledCache) Settled(transactionId string) (string, bool) {
	if x, found := r.cache.Get(transactionId); found {
		return x.(string), true
	}
	return "", false
}
