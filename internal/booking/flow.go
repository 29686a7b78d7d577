package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yuvsiksha-client/internal/api"
	"yuvsiksha-client/internal/status"
	"yuvsiksha-client/models"
	"yuvsiksha-client/monitoring"
)

// backend is the slice of the API client this flow needs. Tests substitute
// a spy to prove no request leaves before validation passes.
type backend interface {
	Availability(ctx context.Context, teacherID, dateKey string) ([]string, error)
	CreateBooking(ctx context.Context, req api.CreateBookingRequest) (*models.Booking, error)
}

// ValidationError is a missing required choice, caught before any network
// call is issued.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: %s is required", e.Field)
}

// Flow drives one booking from teacher profile to submitted request.
type Flow struct {
	api       backend
	logger    *zap.Logger
	selection *Selection
	teacher   *models.Teacher
	available []string // slots fetched for the chosen date
}

func NewFlow(client backend, teacher *models.Teacher, logger *zap.Logger) *Flow {
	return &Flow{
		api:       client,
		logger:    logger,
		selection: NewSelection(teacher),
		teacher:   teacher,
	}
}

func (f *Flow) Selection() *Selection { return f.selection }

// SelectDate validates the date, fetches its concrete slots and clears the
// previous slot selection.
func (f *Flow) SelectDate(ctx context.Context, d time.Time) ([]string, error) {
	if err := f.selection.ChooseDate(d); err != nil {
		return nil, err
	}

	slots, err := f.api.Availability(ctx, f.teacher.ID, DateKey(d))
	if err != nil {
		// The date change is already committed; the old date's slots
		// must not survive it.
		f.available = nil
		return nil, err
	}

	f.available = slots
	return slots, nil
}

// ToggleSlot toggles a slot from the fetched list for the chosen date.
func (f *Flow) ToggleSlot(slot string) error {
	found := false
	for _, s := range f.available {
		if s == slot {
			found = true
			break
		}
	}
	if !found {
		return status.ErrSlotNotAvailable
	}

	f.selection.ToggleSlot(slot)
	return nil
}

// Validate checks the submission preconditions: subject, date and at
// least one slot.
func (f *Flow) Validate() error {
	if f.selection.Subject() == "" {
		return &ValidationError{Field: "subject"}
	}
	if _, ok := f.selection.Date(); !ok {
		return &ValidationError{Field: "date"}
	}
	if len(f.selection.Slots()) == 0 {
		return &ValidationError{Field: "slots"}
	}
	return nil
}

// Submit posts the booking. Validation failures return before any network
// call; server failures surface the backend message. No automatic retry.
func (f *Flow) Submit(ctx context.Context, notes string) (*models.Booking, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	date, _ := f.selection.Date()
	total := f.selection.TotalAmount()

	booking, err := f.api.CreateBooking(ctx, api.CreateBookingRequest{
		TeacherID:   f.teacher.ID,
		Subject:     f.selection.Subject(),
		Date:        date.Format(time.RFC3339),
		Slots:       f.selection.Slots(),
		Notes:       notes,
		TotalAmount: total,
	})
	if err != nil {
		monitoring.TrackBookingSubmission("failed")

		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		f.logger.Warn("Booking submission failed", zap.Error(err))
		return nil, fmt.Errorf("booking: submit: %w", err)
	}

	monitoring.TrackBookingSubmission("ok")
	f.logger.Info("Booking submitted",
		zap.String("booking_id", booking.ID),
		zap.String("teacher_id", f.teacher.ID),
		zap.String("date", DateKey(date)),
		zap.Int("slots", len(booking.Slots)),
		zap.String("total_amount", total.String()),
	)

	return booking, nil
}
