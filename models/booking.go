package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          string          `json:"_id,omitempty"`
	TeacherID   string          `json:"teacherId"`
	StudentID   string          `json:"studentId,omitempty"`
	Subject     string          `json:"subject"`
	Date        time.Time       `json:"date"`
	Slots       []string        `json:"slots"`
	Notes       string          `json:"notes,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      BookingStatus   `json:"status,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}
