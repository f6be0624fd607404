// internal/handlers/adminuser/adminuser_handler.go
package adminuser

import (
	"errors"
	"net/http"

	"lexsite-service/internal/domain/adminuser"
	"lexsite-service/internal/middleware"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/response"
	adminUsecase "lexsite-service/internal/service/adminuser"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminUserHandler struct {
	adminService *adminUsecase.AdminUserService
	logger       *zap.Logger
}

func NewAdminUserHandler(adminService *adminUsecase.AdminUserService, logger *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// List returns all admin role profiles (super admin only)
func (h *AdminUserHandler) List(c *gin.Context) {
	users, err := h.adminService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list admin users", err)
		return
	}
	response.Success(c, http.StatusOK, "admin users retrieved", users)
}

// Get returns one admin role profile (super admin only)
func (h *AdminUserHandler) Get(c *gin.Context) {
	u, err := h.adminService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "admin user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get admin user", err)
		return
	}
	response.Success(c, http.StatusOK, "admin user retrieved", u)
}

// Create provisions a new admin account (super admin only)
func (h *AdminUserHandler) Create(c *gin.Context) {
	var req adminuser.CreateAdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	u, err := h.adminService.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create admin user",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "admin user already exists", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create admin user", err)
		return
	}

	response.Success(c, http.StatusCreated, "admin user created", u)
}

// Update patches an admin role profile (super admin only)
func (h *AdminUserHandler) Update(c *gin.Context) {
	var req adminuser.UpdateAdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	u, err := h.adminService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "admin user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update admin user", err)
		return
	}

	response.Success(c, http.StatusOK, "admin user updated", u)
}

// Delete removes an admin role profile (super admin only)
func (h *AdminUserHandler) Delete(c *gin.Context) {
	actor := middleware.GetRoleProfile(c)

	err := h.adminService.Delete(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		if errors.Is(err, xerrors.ErrSelfDelete) {
			response.Error(c, http.StatusConflict, "cannot delete own account", err)
			return
		}
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "admin user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete admin user", err)
		return
	}

	response.Success(c, http.StatusOK, "admin user deleted", nil)
}
