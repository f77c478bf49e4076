// Package session provides store.AuthProvider implementations: a static
// in-memory provider for tests and tools, and a token-backed provider that
// derives identity from platform access tokens.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/open-rails/accesskit/store"
)

// Verifier extracts the owning user id from a raw access token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (uuid.UUID, error)
}

// fanout is a small synchronous subscriber registry shared by the providers.
type fanout struct {
	mu   sync.Mutex
	next int
	subs map[int]func(store.AuthEvent)
}

func (f *fanout) subscribe(fn func(store.AuthEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[int]func(store.AuthEvent))
	}
	id := f.next
	f.next++
	f.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// emit calls subscribers synchronously, outside the registry lock.
func (f *fanout) emit(ev store.AuthEvent) {
	f.mu.Lock()
	fns := make([]func(store.AuthEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
