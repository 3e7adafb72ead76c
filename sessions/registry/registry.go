package registry

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/imtaco/stream-orch-exp/internal/log"
)

// Closer is what the registry requires of its entries: a way to tear the
// entry down when it is evicted or expires.
type Closer interface {
	ID() string
	Close()
}

// Registry keeps live page-view state machines in memory, bounded by size
// and idle TTL. Eviction closes the entry so held credentials are discarded
// even when the browser never says goodbye.
type Registry[T Closer] struct {
	cache  *expirable.LRU[string, T]
	logger *log.Logger
}

func New[T Closer](size int, ttl time.Duration, logger *log.Logger) *Registry[T] {
	if logger == nil {
		panic("logger is required")
	}

	r := &Registry[T]{logger: logger}
	r.cache = expirable.NewLRU[string, T](size, r.onEvict, ttl)
	return r
}

func (r *Registry[T]) onEvict(id string, entry T) {
	r.logger.Debug("Evicting entry", log.String("id", id))
	entry.Close()
}

// Put registers the entry under its own ID.
func (r *Registry[T]) Put(entry T) {
	r.cache.Add(entry.ID(), entry)
}

// Get also refreshes the entry's recency, so active page views survive the
// idle TTL.
func (r *Registry[T]) Get(id string) (T, bool) {
	return r.cache.Get(id)
}

// Remove evicts the entry immediately; its Close runs via the eviction hook.
func (r *Registry[T]) Remove(id string) bool {
	return r.cache.Remove(id)
}

func (r *Registry[T]) Len() int {
	return r.cache.Len()
}

// Purge closes every entry; used during shutdown.
func (r *Registry[T]) Purge() {
	r.cache.Purge()
}
