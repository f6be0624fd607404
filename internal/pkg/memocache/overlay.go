// internal/pkg/memocache/overlay.go
package memocache

import "sync"

// Overlay holds optimistic local inserts until the authoritative fetch
// catches up. Pending rows are merged over the fetched list at read
// time instead of being written into it, so a fetch returning different
// data cannot diverge from local edits.
type Overlay[T any] struct {
	mu      sync.Mutex
	pending map[string]T
	order   []string
	idFn    func(T) string
}

func NewOverlay[T any](idFn func(T) string) *Overlay[T] {
	return &Overlay[T]{
		pending: make(map[string]T),
		idFn:    idFn,
	}
}

// Add records an optimistic insert.
func (o *Overlay[T]) Add(row T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.idFn(row)
	if _, exists := o.pending[id]; !exists {
		o.order = append(o.order, id)
	}
	o.pending[id] = row
}

// Remove drops a pending insert, e.g. when its create was rolled back.
func (o *Overlay[T]) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discardLocked(id)
}

// Merge returns rows with still-pending inserts prepended. A pending
// entry that appears in rows has been confirmed by the backend and is
// dropped from the overlay.
func (o *Overlay[T]) Merge(rows []T) []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.pending) == 0 {
		return rows
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		seen[o.idFn(row)] = true
	}

	var fresh []T
	for _, id := range append([]string(nil), o.order...) {
		if seen[id] {
			o.discardLocked(id)
			continue
		}
		fresh = append(fresh, o.pending[id])
	}

	if len(fresh) == 0 {
		return rows
	}
	merged := make([]T, 0, len(fresh)+len(rows))
	merged = append(merged, fresh...)
	return append(merged, rows...)
}

func (o *Overlay[T]) discardLocked(id string) {
	delete(o.pending, id)
	for i, v := range o.order {
		if v == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}
