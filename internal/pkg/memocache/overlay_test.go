package memocache_test

import (
	"testing"

	"lexsite-service/internal/pkg/memocache"

	"github.com/stretchr/testify/require"
)

func newOverlay() *memocache.Overlay[row] {
	return memocache.NewOverlay(func(r row) string { return r.ID })
}

func TestMergePrependsPending(t *testing.T) {
	o := newOverlay()
	o.Add(row{ID: "new", Title: "draft"})

	merged := o.Merge([]row{{ID: "a"}, {ID: "b"}})
	require.Equal(t, []row{{ID: "new", Title: "draft"}, {ID: "a"}, {ID: "b"}}, merged)
}

func TestMergeDropsConfirmedPending(t *testing.T) {
	o := newOverlay()
	o.Add(row{ID: "new"})

	// Backend fetch now includes the row: the overlay entry retires.
	merged := o.Merge([]row{{ID: "new", Title: "authoritative"}, {ID: "a"}})
	require.Equal(t, []row{{ID: "new", Title: "authoritative"}, {ID: "a"}}, merged)

	// Subsequent merges no longer re-add it.
	merged = o.Merge([]row{{ID: "a"}})
	require.Equal(t, []row{{ID: "a"}}, merged)
}

func TestMergeKeepsInsertionOrder(t *testing.T) {
	o := newOverlay()
	o.Add(row{ID: "first"})
	o.Add(row{ID: "second"})

	merged := o.Merge(nil)
	require.Equal(t, []row{{ID: "first"}, {ID: "second"}}, merged)
}

func TestRemoveDropsPending(t *testing.T) {
	o := newOverlay()
	o.Add(row{ID: "new"})
	o.Remove("new")

	merged := o.Merge([]row{{ID: "a"}})
	require.Equal(t, []row{{ID: "a"}}, merged)
}

func TestMergeWithNoPendingReturnsRowsUnchanged(t *testing.T) {
	o := newOverlay()
	rows := []row{{ID: "a"}}
	require.Equal(t, rows, o.Merge(rows))
}
