// internal/service/message/message_service.go
package message

import (
	"context"

	"leadscout-service/internal/domain/lead"
	"leadscout-service/internal/domain/message"
	xerrors "leadscout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// MessageRepository is the thread persistence surface.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	FindByLead(ctx context.Context, leadID int64) ([]*message.Message, error)
}

// LeadFinder checks thread ownership.
type LeadFinder interface {
	FindByID(ctx context.Context, id int64) (*lead.Lead, error)
}

type Service struct {
	messages MessageRepository
	leads    LeadFinder
	logger   *zap.Logger
}

func NewService(messages MessageRepository, leads LeadFinder, logger *zap.Logger) *Service {
	return &Service{messages: messages, leads: leads, logger: logger}
}

// Send appends a message to a lead's thread. Only the lead's owner may post.
func (s *Service) Send(ctx context.Context, userID int64, req *message.SendMessageRequest) (*message.Message, error) {
	l, err := s.leads.FindByID(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, xerrors.ErrForbidden
	}

	m := &message.Message{
		LeadID:  req.LeadID,
		UserID:  userID,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("message sent", zap.Int64("lead_id", req.LeadID))
	return m, nil
}

// Thread returns a lead's conversation in chronological order.
func (s *Service) Thread(ctx context.Context, userID, leadID int64) ([]*message.Message, error) {
	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, xerrors.ErrForbidden
	}
	return s.messages.FindByLead(ctx, leadID)
}
