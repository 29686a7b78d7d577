package status

import "errors"

var (
	ErrSessionNotFound  = errors.New("session: no active session")
	ErrDateNotBookable  = errors.New("booking: date is not bookable")
	ErrSlotNotAvailable = errors.New("booking: slot is not available")
)
