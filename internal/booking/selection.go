// Package booking implements the class booking workflow: calendar and
// slot selection against a teacher's weekly availability, price
// computation and submission.
package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"yuvsiksha-client/internal/status"
	"yuvsiksha-client/models"
)

// DateKey formats a date from its local calendar fields, zero padded.
// Never derived from a UTC conversion: that shifts the day for users east
// or west of UTC.
func DateKey(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// midnight truncates t to 00:00 in its own location.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Selection tracks the student's in-progress choices for one teacher.
type Selection struct {
	teacher *models.Teacher
	subject string
	date    time.Time // zero until a date is chosen
	slots   []string

	now func() time.Time
}

func NewSelection(teacher *models.Teacher) *Selection {
	return &Selection{
		teacher: teacher,
		now:     time.Now,
	}
}

// IsDateSelectable reports whether d can be booked: its weekday must be in
// the teacher's availability and it must not be before today (local
// midnight). An empty availability offers no dates at all.
func (s *Selection) IsDateSelectable(d time.Time) bool {
	availability := s.teacher.Profile.Availability
	if len(availability) == 0 {
		return false
	}

	weekday := d.Weekday().String()
	found := false
	for _, name := range availability {
		if name == weekday {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	return !midnight(d).Before(midnight(s.now()))
}

// SelectableDates lists the bookable dates of one calendar month.
func (s *Selection) SelectableDates(year int, month time.Month) []time.Time {
	var dates []time.Time

	d := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	for d.Month() == month {
		if s.IsDateSelectable(d) {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, 1)
	}

	return dates
}

// ChooseSubject picks one of the teacher's subjects.
func (s *Selection) ChooseSubject(subject string) error {
	if !s.teacher.Profile.TeachesSubject(subject) {
		return fmt.Errorf("booking: teacher does not offer %q", subject)
	}
	s.subject = subject
	return nil
}

// ChooseDate picks a date and clears any previously chosen slots.
func (s *Selection) ChooseDate(d time.Time) error {
	if !s.IsDateSelectable(d) {
		return fmt.Errorf("%w: %s", status.ErrDateNotBookable, DateKey(d))
	}
	s.date = midnight(d)
	s.slots = nil
	return nil
}

// ToggleSlot adds the slot to the selection, or removes it if already
// chosen. The selection never holds duplicates.
func (s *Selection) ToggleSlot(slot string) {
	for i, chosen := range s.slots {
		if chosen == slot {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
	s.slots = append(s.slots, slot)
}

func (s *Selection) Subject() string { return s.subject }

func (s *Selection) Date() (time.Time, bool) {
	return s.date, !s.date.IsZero()
}

func (s *Selection) Slots() []string {
	out := make([]string, len(s.slots))
	copy(out, s.slots)
	return out
}

// TotalAmount is the number of chosen slots times the hourly rate.
func (s *Selection) TotalAmount() decimal.Decimal {
	return s.teacher.Profile.HourlyRate.Mul(decimal.NewFromInt(int64(len(s.slots))))
}
