// internal/service/tag/tag.go
package tag

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"lexsite-service/internal/domain/tag"
	blogsvc "lexsite-service/internal/service/blog"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type TagRepo interface {
	Create(ctx context.Context, t *tag.Tag) error
	List(ctx context.Context) ([]tag.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*tag.Tag, error)
	Delete(ctx context.Context, id string) error
}

type TagService struct {
	repo   TagRepo
	logger *zap.Logger
}

func NewTagService(repo TagRepo, logger *zap.Logger) *TagService {
	return &TagService{repo: repo, logger: logger}
}

func (s *TagService) List(ctx context.Context) ([]tag.Tag, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Create(ctx context.Context, req *tag.CreateTagRequest) (*tag.Tag, error) {
	slug := req.Slug
	if slug == "" {
		slug = blogsvc.Slugify(req.Name)
	}

	t := &tag.Tag{
		ID:   ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Name: req.Name,
		Slug: slug,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.logger.Info("tag created", zap.String("tag_id", t.ID), zap.String("slug", t.Slug))
	return t, nil
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
