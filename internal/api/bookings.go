package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"yuvsiksha-client/models"
)

type CreateBookingRequest struct {
	TeacherID   string          `json:"teacherId"`
	Subject     string          `json:"subject"`
	Date        string          `json:"date"` // ISO 8601
	Slots       []string        `json:"slots"`
	Notes       string          `json:"notes"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CreateBooking submits a booking request for the authenticated student.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.call(ctx, http.MethodPost, "/bookings", nil, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
