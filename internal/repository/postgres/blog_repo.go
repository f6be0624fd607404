// internal/repository/postgres/blog_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"lexsite-service/internal/domain/blog"
	xerrors "lexsite-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlogRepository struct {
	db *pgxpool.Pool
}

func NewBlogRepository(db *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(ctx context.Context, b *blog.Blog) error {
	query := `
		INSERT INTO blogs (id, title, slug, excerpt, content, cover_url, tags, author_id, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.Title, b.Slug, b.Excerpt, b.Content, b.CoverURL, b.Tags, b.AuthorID, b.IsPublished,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create blog: %w", err)
	}
	return nil
}

func (r *BlogRepository) FindByID(ctx context.Context, id string) (*blog.Blog, error) {
	query := `
		SELECT id, title, slug, excerpt, content, cover_url, tags, author_id, is_published, created_at, updated_at
		FROM blogs
		WHERE id = $1
	`

	var b blog.Blog
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content, &b.CoverURL,
		&b.Tags, &b.AuthorID, &b.IsPublished, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find blog: %w", err)
	}

	return &b, nil
}

// List returns all blog rows, most recent first. This is one of the
// two queries fronted by the list memo cache.
func (r *BlogRepository) List(ctx context.Context) ([]blog.Blog, error) {
	query := `
		SELECT id, title, slug, excerpt, content, cover_url, tags, author_id, is_published, created_at, updated_at
		FROM blogs
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []blog.Blog
	for rows.Next() {
		var b blog.Blog
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content, &b.CoverURL,
			&b.Tags, &b.AuthorID, &b.IsPublished, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, b)
	}

	return blogs, rows.Err()
}

func (r *BlogRepository) Update(ctx context.Context, b *blog.Blog) error {
	query := `
		UPDATE blogs
		SET title = $2, slug = $3, excerpt = $4, content = $5, cover_url = $6,
		    tags = $7, is_published = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.Title, b.Slug, b.Excerpt, b.Content, b.CoverURL, b.Tags, b.IsPublished,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update blog: %w", err)
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
