// internal/handlers/plan/plan_handler.go
package plan

import (
	"net/http"
	"strconv"

	"leadscout-service/internal/domain/subscription"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	subscriptionService *service.Service
}

func NewPlanHandler(subscriptionService *service.Service) *PlanHandler {
	return &PlanHandler{subscriptionService: subscriptionService}
}

// ListPlans lists purchasable plans. Admins see retired ones too.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	includeInactive := middleware.IsAdmin(c) && c.Query("all") == "true"

	plans, err := h.subscriptionService.ListPlans(c.Request.Context(), includeInactive)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", plans)
}

// GetPlan retrieves a single plan by ID.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	plan, err := h.subscriptionService.GetPlan(c.Request.Context(), id)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "plan not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", plan)
}

// CreatePlan adds a plan (admin only).
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req subscription.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid plan payload", err)
		return
	}

	plan, err := h.subscriptionService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "plan created", plan)
}

// UpdatePlan modifies a plan (admin only).
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	var req subscription.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid plan payload", err)
		return
	}

	plan, err := h.subscriptionService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "plan not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan updated", plan)
}

// RetirePlan closes a plan for new purchases (admin only).
func (h *PlanHandler) RetirePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	if err := h.subscriptionService.RetirePlan(c.Request.Context(), id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "plan not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to retire plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retired", nil)
}
