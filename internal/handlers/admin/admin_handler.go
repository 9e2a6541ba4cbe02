// internal/handlers/admin/admin_handler.go
package admin

import (
	"net/http"
	"strconv"

	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/admin"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *service.Service
}

func NewAdminHandler(adminService *service.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers pages through all accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.adminService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", users)
}

// GetUser retrieves one account.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user ID", err)
		return
	}

	user, err := h.adminService.GetUser(c.Request.Context(), id)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	response.Success(c, http.StatusOK, "user retrieved", user)
}

// DisableUser locks an account and cuts its sessions.
func (h *AdminHandler) DisableUser(c *gin.Context) {
	adminID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user ID", err)
		return
	}

	if err := h.adminService.DisableUser(c.Request.Context(), adminID, id); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "user not found")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "cannot disable own account", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to disable user", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "user disabled", nil)
}

// EnableUser unlocks an account.
func (h *AdminHandler) EnableUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user ID", err)
		return
	}

	if err := h.adminService.EnableUser(c.Request.Context(), id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to enable user", err)
		return
	}

	response.Success(c, http.StatusOK, "user enabled", nil)
}

// ListPayments pages through all payments across users.
func (h *AdminHandler) ListPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	payments, err := h.adminService.ListPayments(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", payments)
}

// ListScrapes pages through all scrape jobs across users.
func (h *AdminHandler) ListScrapes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.adminService.ListScrapes(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list scrape jobs", err)
		return
	}

	response.Success(c, http.StatusOK, "scrape jobs retrieved", jobs)
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to gather stats", err)
		return
	}

	response.Success(c, http.StatusOK, "stats retrieved", stats)
}
