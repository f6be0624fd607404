// internal/domain/blog/dto.go
package blog

type CreateBlogRequest struct {
	Title       string   `json:"title" binding:"required"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content" binding:"required"`
	CoverURL    string   `json:"cover_url"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"is_published"`
}

type UpdateBlogRequest struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Excerpt     *string  `json:"excerpt"`
	Content     *string  `json:"content"`
	CoverURL    *string  `json:"cover_url"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"is_published"`
}
