// internal/domain/blog/entity.go
package blog

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Blog struct {
	ID          string         `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Slug        string         `json:"slug" db:"slug"`
	Excerpt     sql.NullString `json:"excerpt" db:"excerpt"`
	Content     string         `json:"content" db:"content"`
	CoverURL    sql.NullString `json:"cover_url" db:"cover_url"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	AuthorID    string         `json:"author_id" db:"author_id"`
	IsPublished bool           `json:"is_published" db:"is_published"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
