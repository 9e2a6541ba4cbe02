// internal/domain/subscription/dto.go
package subscription

// CreatePlanRequest for admin plan creation
type CreatePlanRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Currency    string  `json:"currency"`
	Period      string  `json:"period" binding:"required,oneof=monthly quarterly yearly lifetime"`
	MaxScrapes  int32   `json:"maxScrapes"`
}

// UpdatePlanRequest for admin plan updates
type UpdatePlanRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	MaxScrapes  int32   `json:"maxScrapes"`
}

// CreateSubscriptionRequest starts a subscription pending payment.
type CreateSubscriptionRequest struct {
	PlanID int64 `json:"planId" binding:"required"`
}
