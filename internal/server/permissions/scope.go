package permissions

import (
	"context"
	"sync"
)

type scopeKey struct{}

// scope caches permission sets for the lifetime of one request.
type scope struct {
	mu   sync.Mutex
	sets map[int64]Set
}

func (s *scope) get(userID int64) (Set, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[userID]
	return set, ok
}

func (s *scope) put(userID int64, set Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[userID] = set
}

// WithScope returns a copy of ctx carrying an empty permission cache.
// Sets loaded through that context are reused until the context is dropped.
func WithScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &scope{sets: make(map[int64]Set)})
}

func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}
