// internal/domain/job/dto.go
package job

type CreateJobRequest struct {
	Title       string `json:"title" binding:"required"`
	Department  string `json:"department"`
	Location    string `json:"location"`
	Description string `json:"description" binding:"required"`
	IsOpen      bool   `json:"is_open"`
}

type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Department  *string `json:"department"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	IsOpen      *bool   `json:"is_open"`
}
