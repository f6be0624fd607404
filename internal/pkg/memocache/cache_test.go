package memocache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lexsite-service/internal/pkg/memocache"

	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string
	Title string
}

func newCache(t *testing.T) (*memocache.Cache[row], *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := memocache.New[row](5 * time.Minute)
	c.SetClock(func() time.Time { return now })
	return c, &now
}

func TestReadMissesWhenEmpty(t *testing.T) {
	c, _ := newCache(t)

	rows, ok := c.Read()
	require.False(t, ok)
	require.Nil(t, rows)
}

func TestPopulateThenReadWithinTTL(t *testing.T) {
	c, now := newCache(t)

	c.Populate([]row{{ID: "b"}, {ID: "a"}})

	*now = now.Add(5*time.Minute - time.Second)
	rows, ok := c.Read()
	require.True(t, ok)
	require.Equal(t, []row{{ID: "b"}, {ID: "a"}}, rows)
}

func TestReadMissesAtTTL(t *testing.T) {
	c, now := newCache(t)

	c.Populate([]row{{ID: "a"}})

	*now = now.Add(5 * time.Minute)
	_, ok := c.Read()
	require.False(t, ok)
}

func TestInvalidateOneKeepsFreshness(t *testing.T) {
	c, now := newCache(t)

	c.Populate([]row{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	c.InvalidateOne(func(r row) bool { return r.ID == "b" })

	*now = now.Add(time.Minute)
	rows, ok := c.Read()
	require.True(t, ok)
	require.Equal(t, []row{{ID: "a"}, {ID: "c"}}, rows)
}

func TestInvalidateAll(t *testing.T) {
	c, _ := newCache(t)

	c.Populate([]row{{ID: "a"}})
	c.InvalidateAll()

	_, ok := c.Read()
	require.False(t, ok)
}

func TestGetOrFetchPopulates(t *testing.T) {
	c, _ := newCache(t)
	fetches := 0

	fetch := func(ctx context.Context) ([]row, error) {
		fetches++
		return []row{{ID: "a"}}, nil
	}

	rows, err := c.GetOrFetch(context.Background(), fetch)
	require.NoError(t, err)
	require.Equal(t, []row{{ID: "a"}}, rows)

	// Second call is served from cache.
	rows, err = c.GetOrFetch(context.Background(), fetch)
	require.NoError(t, err)
	require.Equal(t, []row{{ID: "a"}}, rows)
	require.Equal(t, 1, fetches)
}

func TestGetOrFetchErrorInvalidates(t *testing.T) {
	c, _ := newCache(t)
	wantErr := errors.New("backend down")

	_, err := c.GetOrFetch(context.Background(), func(ctx context.Context) ([]row, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// The failed fetch must not leave a poisoned entry behind.
	rows, err := c.GetOrFetch(context.Background(), func(ctx context.Context) ([]row, error) {
		return []row{{ID: "a"}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []row{{ID: "a"}}, rows)
}

func TestGetOrFetchDeduplicatesConcurrentCallers(t *testing.T) {
	c, _ := newCache(t)

	var fetches atomic.Int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) ([]row, error) {
		fetches.Add(1)
		<-release
		return []row{{ID: "a"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := c.GetOrFetch(context.Background(), fetch)
			require.NoError(t, err)
			require.Equal(t, []row{{ID: "a"}}, rows)
		}()
	}

	// Let the callers pile up behind the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), fetches.Load())
}
