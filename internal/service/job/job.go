// internal/service/job/job.go
package job

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"lexsite-service/internal/domain/job"
	"lexsite-service/internal/pkg/memocache"
	"lexsite-service/internal/pkg/retry"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type JobRepo interface {
	Create(ctx context.Context, j *job.Job) error
	FindByID(ctx context.Context, id string) (*job.Job, error)
	List(ctx context.Context) ([]job.Job, error)
	Update(ctx context.Context, j *job.Job) error
	Delete(ctx context.Context, id string) error
}

// JobService mirrors the blog service for the careers listings, the
// second query fronted by the list memo cache.
type JobService struct {
	repo       JobRepo
	cache      *memocache.Cache[job.Job]
	overlay    *memocache.Overlay[job.Job]
	fetchRetry retry.Policy
	logger     *zap.Logger
}

func NewJobService(repo JobRepo, cacheTTL time.Duration, logger *zap.Logger) *JobService {
	return &JobService{
		repo:       repo,
		cache:      memocache.New[job.Job](cacheTTL),
		overlay:    memocache.NewOverlay(func(j job.Job) string { return j.ID }),
		fetchRetry: retry.DefaultLookup,
		logger:     logger,
	}
}

func (s *JobService) List(ctx context.Context) ([]job.Job, error) {
	rows, err := s.cache.GetOrFetch(ctx, func(ctx context.Context) ([]job.Job, error) {
		var fetched []job.Job
		err := s.fetchRetry.Do(ctx, func(ctx context.Context) error {
			var err error
			fetched, err = s.repo.List(ctx)
			return err
		})
		return fetched, err
	})
	if err != nil {
		s.logger.Error("failed to fetch jobs", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	return s.overlay.Merge(rows), nil
}

func (s *JobService) Get(ctx context.Context, id string) (*job.Job, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *JobService) Create(ctx context.Context, req *job.CreateJobRequest) (*job.Job, error) {
	j := &job.Job{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Title:       req.Title,
		Department:  sql.NullString{String: req.Department, Valid: req.Department != ""},
		Location:    sql.NullString{String: req.Location, Valid: req.Location != ""},
		Description: req.Description,
		IsOpen:      req.IsOpen,
	}

	if err := s.repo.Create(ctx, j); err != nil {
		s.logger.Error("failed to create job", zap.Error(err))
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.overlay.Add(*j)

	s.logger.Info("job created", zap.String("job_id", j.ID))
	return j, nil
}

func (s *JobService) Update(ctx context.Context, id string, req *job.UpdateJobRequest) (*job.Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		j.Title = *req.Title
	}
	if req.Department != nil {
		j.Department = sql.NullString{String: *req.Department, Valid: *req.Department != ""}
	}
	if req.Location != nil {
		j.Location = sql.NullString{String: *req.Location, Valid: *req.Location != ""}
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.IsOpen != nil {
		j.IsOpen = *req.IsOpen
	}

	if err := s.repo.Update(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	s.cache.InvalidateAll()
	s.overlay.Remove(id)

	return j, nil
}

func (s *JobService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateOne(func(j job.Job) bool { return j.ID == id })
	s.overlay.Remove(id)

	s.logger.Info("job deleted", zap.String("job_id", id))
	return nil
}
