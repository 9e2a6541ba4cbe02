// internal/handlers/message/message_handler.go
package message

import (
	"net/http"
	"strconv"

	domain "leadscout-service/internal/domain/message"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/message"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *service.Service
}

func NewMessageHandler(messageService *service.Service) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send posts a message to a lead's thread.
func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid message payload", err)
		return
	}

	m, err := h.messageService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "lead not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your lead")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to send message", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "message sent", m)
}

// Thread returns a lead's conversation.
func (h *MessageHandler) Thread(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	leadID, err := strconv.ParseInt(c.Param("leadId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid lead ID", err)
		return
	}

	messages, err := h.messageService.Thread(c.Request.Context(), userID, leadID)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "lead not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your lead")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to load thread", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "thread retrieved", messages)
}
