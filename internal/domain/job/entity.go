// internal/domain/job/entity.go
package job

import (
	"database/sql"
	"time"
)

type Job struct {
	ID          string         `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Department  sql.NullString `json:"department" db:"department"`
	Location    sql.NullString `json:"location" db:"location"`
	Description string         `json:"description" db:"description"`
	IsOpen      bool           `json:"is_open" db:"is_open"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
