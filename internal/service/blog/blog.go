// internal/service/blog/blog.go
package blog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lexsite-service/internal/domain/blog"
	"lexsite-service/internal/pkg/memocache"
	"lexsite-service/internal/pkg/retry"

	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// BlogRepo is the persistence surface the service needs.
type BlogRepo interface {
	Create(ctx context.Context, b *blog.Blog) error
	FindByID(ctx context.Context, id string) (*blog.Blog, error)
	List(ctx context.Context) ([]blog.Blog, error)
	Update(ctx context.Context, b *blog.Blog) error
	Delete(ctx context.Context, id string) error
}

// BlogService fronts the blog table with the list memo cache: admin
// list views within the freshness window skip the remote read, and
// optimistic creates ride a pending overlay until a fetch confirms
// them.
type BlogService struct {
	repo       BlogRepo
	cache      *memocache.Cache[blog.Blog]
	overlay    *memocache.Overlay[blog.Blog]
	fetchRetry retry.Policy
	logger     *zap.Logger
}

func NewBlogService(repo BlogRepo, cacheTTL time.Duration, logger *zap.Logger) *BlogService {
	return &BlogService{
		repo:       repo,
		cache:      memocache.New[blog.Blog](cacheTTL),
		overlay:    memocache.NewOverlay(func(b blog.Blog) string { return b.ID }),
		fetchRetry: retry.DefaultLookup,
		logger:     logger,
	}
}

// List returns all blogs, most recent first, served from the memo
// cache while fresh.
func (s *BlogService) List(ctx context.Context) ([]blog.Blog, error) {
	rows, err := s.cache.GetOrFetch(ctx, func(ctx context.Context) ([]blog.Blog, error) {
		var fetched []blog.Blog
		err := s.fetchRetry.Do(ctx, func(ctx context.Context) error {
			var err error
			fetched, err = s.repo.List(ctx)
			return err
		})
		return fetched, err
	})
	if err != nil {
		s.logger.Error("failed to fetch blogs", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch blogs: %w", err)
	}

	return s.overlay.Merge(rows), nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*blog.Blog, error) {
	return s.repo.FindByID(ctx, id)
}

// Create inserts a blog and records it as a pending overlay entry so
// list views include it before the next authoritative fetch.
func (s *BlogService) Create(ctx context.Context, authorID string, req *blog.CreateBlogRequest) (*blog.Blog, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}

	b := &blog.Blog{
		ID:          newID(),
		Title:       req.Title,
		Slug:        slug,
		Excerpt:     sql.NullString{String: req.Excerpt, Valid: req.Excerpt != ""},
		Content:     req.Content,
		CoverURL:    sql.NullString{String: req.CoverURL, Valid: req.CoverURL != ""},
		Tags:        pq.StringArray(req.Tags),
		AuthorID:    authorID,
		IsPublished: req.IsPublished,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("failed to create blog", zap.Error(err))
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}

	s.overlay.Add(*b)

	s.logger.Info("blog created", zap.String("blog_id", b.ID), zap.String("slug", b.Slug))
	return b, nil
}

func (s *BlogService) Update(ctx context.Context, id string, req *blog.UpdateBlogRequest) (*blog.Blog, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Slug != nil {
		b.Slug = *req.Slug
	}
	if req.Excerpt != nil {
		b.Excerpt = sql.NullString{String: *req.Excerpt, Valid: *req.Excerpt != ""}
	}
	if req.Content != nil {
		b.Content = *req.Content
	}
	if req.CoverURL != nil {
		b.CoverURL = sql.NullString{String: *req.CoverURL, Valid: *req.CoverURL != ""}
	}
	if req.Tags != nil {
		b.Tags = pq.StringArray(req.Tags)
	}
	if req.IsPublished != nil {
		b.IsPublished = *req.IsPublished
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update blog: %w", err)
	}

	// Row contents changed; the cached list is stale now.
	s.cache.InvalidateAll()
	s.overlay.Remove(id)

	return b, nil
}

// Delete removes the row and surgically drops it from the cached list;
// the shortened list stays valid until natural expiry.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateOne(func(b blog.Blog) bool { return b.ID == id })
	s.overlay.Remove(id)

	s.logger.Info("blog deleted", zap.String("blog_id", id))
	return nil
}

func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
