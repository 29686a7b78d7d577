package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"yuvsiksha-client/models"
)

type ListingOrderRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone"`
	Purpose       string          `json:"purpose"`
}

// CreateListingOrder creates a Cashfree order for the teacher listing fee.
func (c *Client) CreateListingOrder(ctx context.Context, req ListingOrderRequest) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := c.call(ctx, http.MethodPost, "/payments/cashfree-order", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyResult is the gateway status reported by the verify endpoint.
// Status is PAID, PENDING, ACTIVE or a gateway failure code.
type VerifyResult struct {
	Status  string
	Message string
}

// VerifyPayment checks the order status. The result carries the gateway
// status as-is; only transport and HTTP-level problems are errors.
func (c *Client) VerifyPayment(ctx context.Context, orderID string) (*VerifyResult, error) {
	env, err := c.do(ctx, http.MethodGet, "/payments/verify/"+orderID, nil, nil)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Status: env.Status, Message: env.Message}, nil
}
