// internal/handlers/lead/lead_handler.go
package lead

import (
	"net/http"
	"strconv"

	domain "leadscout-service/internal/domain/lead"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/lead"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService *service.Service
}

func NewLeadHandler(leadService *service.Service) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// Create converts a candidate into a tracked lead.
func (h *LeadHandler) Create(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req domain.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid lead payload", err)
		return
	}

	l, err := h.leadService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "candidate not found")
		case xerrors.Is(err, xerrors.ErrDuplicateEntry):
			response.Error(c, http.StatusConflict, "candidate already tracked", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to create lead", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "lead created", l)
}

// ListMine returns the caller's pipeline.
func (h *LeadHandler) ListMine(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	leads, err := h.leadService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list leads", err)
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved", leads)
}

// Get retrieves one lead.
func (h *LeadHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid lead ID", err)
		return
	}

	l, err := h.leadService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "lead retrieved", l)
}

// Update changes pipeline status and/or notes.
func (h *LeadHandler) Update(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid lead ID", err)
		return
	}

	var req domain.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid lead payload", err)
		return
	}

	l, err := h.leadService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "unknown pipeline status", nil)
			return
		}
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "lead updated", l)
}

// Delete removes a lead from the pipeline.
func (h *LeadHandler) Delete(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid lead ID", err)
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "lead deleted", nil)
}

// ExportCSV streams the caller's pipeline as a CSV download.
func (h *LeadHandler) ExportCSV(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)

	if err := h.leadService.ExportCSV(c.Request.Context(), userID, c.Writer); err != nil {
		// Headers may already be out; just log through gin's error list.
		_ = c.Error(err)
	}
}

func (h *LeadHandler) fail(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "lead not found")
	case xerrors.Is(err, xerrors.ErrForbidden):
		response.Forbidden(c, "not your lead")
	default:
		response.Error(c, http.StatusInternalServerError, "lead operation failed", err)
	}
}
