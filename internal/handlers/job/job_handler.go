// internal/handlers/job/job_handler.go
package job

import (
	"errors"
	"net/http"

	"lexsite-service/internal/domain/job"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/response"
	jobUsecase "lexsite-service/internal/service/job"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobService *jobUsecase.JobService
	logger     *zap.Logger
}

func NewJobHandler(jobService *jobUsecase.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// List returns all open job postings
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list jobs", err)
		return
	}
	response.Success(c, http.StatusOK, "jobs retrieved", jobs)
}

// Get returns a single job posting by id
func (h *JobHandler) Get(c *gin.Context) {
	posting, err := h.jobService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "job not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get job", err)
		return
	}
	response.Success(c, http.StatusOK, "job retrieved", posting)
}

// Create publishes a job posting (admin only)
func (h *JobHandler) Create(c *gin.Context) {
	var req job.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	posting, err := h.jobService.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create job", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to create job", err)
		return
	}

	response.Success(c, http.StatusCreated, "job created", posting)
}

// Update edits a job posting (admin only)
func (h *JobHandler) Update(c *gin.Context) {
	var req job.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	posting, err := h.jobService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "job not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update job", err)
		return
	}

	response.Success(c, http.StatusOK, "job updated", posting)
}

// Delete removes a job posting (admin only)
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "job not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete job", err)
		return
	}
	response.Success(c, http.StatusOK, "job deleted", nil)
}
