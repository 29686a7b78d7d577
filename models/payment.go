package models

// PaymentOrder is the listing-fee order created by the backend. It lives
// only for the duration of one payment attempt.
type PaymentOrder struct {
	OrderID          string `json:"orderId"`
	PaymentSessionID string `json:"paymentSessionId"`
	PaymentLink      string `json:"paymentLink,omitempty"`
}

// Gateway-side order statuses as reported by the verify endpoint.
const (
	GatewayStatusPaid    = "PAID"
	GatewayStatusPending = "PENDING"
	GatewayStatusActive  = "ACTIVE"
)
