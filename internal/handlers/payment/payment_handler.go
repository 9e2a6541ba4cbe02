// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"
	"strconv"

	domain "leadscout-service/internal/domain/payment"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *service.Service
}

func NewPaymentHandler(paymentService *service.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create records a pending payment for a subscription.
func (h *PaymentHandler) Create(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req domain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid payment payload", err)
		return
	}

	p, err := h.paymentService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create payment", err)
		return
	}

	response.Success(c, http.StatusCreated, "payment recorded", p)
}

// Get retrieves one payment.
func (h *PaymentHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payment ID", err)
		return
	}

	p, err := h.paymentService.Get(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your payment")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to load payment", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "payment retrieved", p)
}

// ListMine returns the caller's payments.
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	payments, err := h.paymentService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", payments)
}

// UpdateStatus transitions a payment (admin only). Settling a payment
// activates the paid subscription.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payment ID", err)
		return
	}

	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid status payload", err)
		return
	}

	p, err := h.paymentService.Transition(c.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusConflict, "illegal payment transition", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update payment", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "payment updated", p)
}
