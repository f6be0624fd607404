// internal/handlers/blog/blog_handler.go
package blog

import (
	"errors"
	"net/http"

	"lexsite-service/internal/domain/blog"
	"lexsite-service/internal/middleware"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/response"
	blogUsecase "lexsite-service/internal/service/blog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BlogHandler struct {
	blogService *blogUsecase.BlogService
	logger      *zap.Logger
}

func NewBlogHandler(blogService *blogUsecase.BlogService, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
		logger:      logger,
	}
}

// List returns all blog posts, newest first. Served from the memo
// cache; pending optimistic inserts are merged in.
func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.blogService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list blogs", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list blogs", err)
		return
	}
	response.Success(c, http.StatusOK, "blogs retrieved", posts)
}

// Get returns a single blog post by id
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "blog not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get blog", err)
		return
	}
	response.Success(c, http.StatusOK, "blog retrieved", post)
}

// Create publishes a new blog post (admin only)
func (h *BlogHandler) Create(c *gin.Context) {
	var req blog.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	profile := middleware.GetRoleProfile(c)
	authorID := ""
	if profile != nil {
		authorID = profile.ID
	}

	post, err := h.blogService.Create(c.Request.Context(), authorID, &req)
	if err != nil {
		h.logger.Error("failed to create blog", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to create blog", err)
		return
	}

	response.Success(c, http.StatusCreated, "blog created", post)
}

// Update edits an existing blog post (admin only)
func (h *BlogHandler) Update(c *gin.Context) {
	var req blog.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	post, err := h.blogService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "blog not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update blog", err)
		return
	}

	response.Success(c, http.StatusOK, "blog updated", post)
}

// Delete removes a blog post (admin only)
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "blog not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete blog", err)
		return
	}
	response.Success(c, http.StatusOK, "blog deleted", nil)
}
