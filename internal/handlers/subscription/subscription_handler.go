// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	domain "leadscout-service/internal/domain/subscription"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.Service
}

func NewSubscriptionHandler(subscriptionService *service.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// ListMine returns the caller's subscriptions with their plans.
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	subs, err := h.subscriptionService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", subs)
}

// Status reports whether the caller currently holds a valid subscription.
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	entitled, err := h.subscriptionService.IsEntitled(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to check subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription status", gin.H{
		"entitled": entitled,
	})
}

// Subscribe starts a subscription pending payment.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req domain.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid subscription payload", err)
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "plan not found")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "plan is not open for purchase", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to create subscription", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "subscription created, awaiting payment", sub)
}

// Cancel deactivates a subscription.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	err = h.subscriptionService.Cancel(c.Request.Context(), userID, id, middleware.IsAdmin(c))
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "subscription not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your subscription")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to cancel subscription", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", nil)
}
