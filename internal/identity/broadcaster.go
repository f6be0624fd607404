// internal/identity/broadcaster.go
package identity

import "sync"

// broadcaster fans auth state changes out to subscribers. Shared by
// the provider implementations.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]StateChangeFunc
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]StateChangeFunc)}
}

func (b *broadcaster) subscribe(fn StateChangeFunc) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcaster) emit(event string, session *Session) {
	b.mu.Lock()
	fns := make([]StateChangeFunc, 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}
