package blog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lexsite-service/internal/domain/blog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBlogRepo struct {
	mu        sync.Mutex
	rows      map[string]blog.Blog
	order     []string
	listCalls int
	listErr   error
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{rows: make(map[string]blog.Blog)}
}

func (r *fakeBlogRepo) Create(ctx context.Context, b *blog.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.rows[b.ID] = *b
	r.order = append([]string{b.ID}, r.order...)
	return nil
}

func (r *fakeBlogRepo) FindByID(ctx context.Context, id string) (*blog.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &b, nil
}

func (r *fakeBlogRepo) List(ctx context.Context) ([]blog.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]blog.Blog, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *fakeBlogRepo) Update(ctx context.Context, b *blog.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[b.ID] = *b
	return nil
}

func (r *fakeBlogRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeBlogRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

func newTestService(repo *fakeBlogRepo) *BlogService {
	return NewBlogService(repo, 5*time.Minute, zap.NewNop())
}

func TestListServesFromCacheWithinWindow(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "author-1", &blog.CreateBlogRequest{Title: "First Post", Content: "body"})
	require.NoError(t, err)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls(), "second list should hit the cache")
}

func TestCreateVisibleInCachedListImmediately(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Warm the cache with an empty list.
	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)

	created, err := svc.Create(ctx, "author-1", &blog.CreateBlogRequest{Title: "Breaking News", Content: "body"})
	require.NoError(t, err)

	rows, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, created.ID, rows[0].ID)
	assert.Equal(t, 1, repo.calls(), "pending insert must not force a refetch")
}

func TestCreateDerivesSlugFromTitle(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), "author-1", &blog.CreateBlogRequest{
		Title:   "Estate Planning: What You Need To Know!",
		Content: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, "estate-planning-what-you-need-to-know", created.Slug)
}

func TestUpdateInvalidatesCachedList(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "author-1", &blog.CreateBlogRequest{Title: "Old Title", Content: "body"})
	require.NoError(t, err)

	_, err = svc.List(ctx)
	require.NoError(t, err)

	newTitle := "New Title"
	_, err = svc.Update(ctx, created.ID, &blog.UpdateBlogRequest{Title: &newTitle})
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "New Title", rows[0].Title)
	assert.Equal(t, 2, repo.calls(), "update must force the next list to refetch")
}

func TestDeleteDropsRowWithoutRefetch(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, "author-1", &blog.CreateBlogRequest{Title: "Keep Me", Content: "body"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, "author-1", &blog.CreateBlogRequest{Title: "Drop Me", Content: "body"})
	require.NoError(t, err)

	_, err = svc.List(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)
	assert.Equal(t, 1, repo.calls(), "delete keeps the shortened list cached")
}

func TestListErrorLeavesCacheCold(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.mu.Lock()
	repo.listErr = errors.New("db down")
	repo.mu.Unlock()

	_, err := svc.List(ctx)
	require.Error(t, err)

	repo.mu.Lock()
	repo.listErr = nil
	repo.mu.Unlock()

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":        "hello-world",
		"  spaced   out  ":   "spaced-out",
		"Already-Slugged":    "already-slugged",
		"Symbols & Numbers7": "symbols-numbers7",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
