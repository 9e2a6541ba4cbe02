// internal/domain/payment/entity.go
package payment

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

type Method string

const (
	MethodCard        Method = "CARD"
	MethodMobileMoney Method = "MOBILE_MONEY"
	MethodTransfer    Method = "TRANSFER"
)

// Payment records money received for a subscription. The gateway exchange
// itself happens elsewhere; this is the ledger entry whose status
// transitions drive entitlement.
type Payment struct {
	ID             int64      `json:"id"`
	Reference      string     `json:"reference"`
	UserID         int64      `json:"userId"`
	SubscriptionID int64      `json:"subscriptionId"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Method         Method     `json:"method"`
	Status         Status     `json:"status"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ValidTransition reports whether a payment may move between two statuses.
// Only pending payments settle; completed payments may only be refunded.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted:
		return to == StatusRefunded
	default:
		return false
	}
}
