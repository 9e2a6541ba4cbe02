// internal/domain/payment/dto.go
package payment

// CreatePaymentRequest records a pending payment for a subscription.
type CreatePaymentRequest struct {
	SubscriptionID int64   `json:"subscriptionId" binding:"required"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	Currency       string  `json:"currency"`
	Method         string  `json:"method" binding:"required,oneof=CARD MOBILE_MONEY TRANSFER"`
}

// UpdateStatusRequest transitions a payment (admin / gateway callback).
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED FAILED REFUNDED"`
}
