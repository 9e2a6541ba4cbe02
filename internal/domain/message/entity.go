// internal/domain/message/entity.go
package message

import "time"

// Message is one entry in the conversation thread with a lead.
type Message struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"leadId"`
	UserID    int64     `json:"userId"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// SendMessageRequest posts a message to a lead's thread.
type SendMessageRequest struct {
	LeadID  int64  `json:"leadId" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required"`
}
