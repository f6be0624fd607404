// internal/handlers/tag/tag_handler.go
package tag

import (
	"errors"
	"net/http"

	"lexsite-service/internal/domain/tag"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/response"
	tagUsecase "lexsite-service/internal/service/tag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TagHandler struct {
	tagService *tagUsecase.TagService
	logger     *zap.Logger
}

func NewTagHandler(tagService *tagUsecase.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list tags", err)
		return
	}
	response.Success(c, http.StatusOK, "tags retrieved", tags)
}

func (h *TagHandler) Create(c *gin.Context) {
	var req tag.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.tagService.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create tag", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to create tag", err)
		return
	}

	response.Success(c, http.StatusCreated, "tag created", created)
}

func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tagService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "tag not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete tag", err)
		return
	}
	response.Success(c, http.StatusOK, "tag deleted", nil)
}
