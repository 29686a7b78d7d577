package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Teacher struct {
	ID      string         `json:"_id"`
	Name    FlexString     `json:"name"`
	Email   string         `json:"email"`
	Profile TeacherProfile `json:"teacherProfile"`
}

// TeacherProfile is the normalized teacher profile. Availability holds
// weekday names ("Monday".."Sunday") on which the teacher offers slots.
type TeacherProfile struct {
	Subjects     []FlexString
	HourlyRate   decimal.Decimal
	Availability []string
	IsListed     bool
}

// UnmarshalJSON resolves the legacy rate aliases (hourlyRate, rate,
// pricePerHour, price) into the single HourlyRate field. A profile with no
// rate at all decodes to a zero rate.
func (p *TeacherProfile) UnmarshalJSON(b []byte) error {
	var raw struct {
		Subjects     []FlexString     `json:"subjects"`
		Availability []string         `json:"availability"`
		IsListed     bool             `json:"isListed"`
		HourlyRate   *decimal.Decimal `json:"hourlyRate"`
		Rate         *decimal.Decimal `json:"rate"`
		PricePerHour *decimal.Decimal `json:"pricePerHour"`
		Price        *decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.Subjects = raw.Subjects
	p.Availability = raw.Availability
	p.IsListed = raw.IsListed

	switch {
	case raw.HourlyRate != nil:
		p.HourlyRate = *raw.HourlyRate
	case raw.Rate != nil:
		p.HourlyRate = *raw.Rate
	case raw.PricePerHour != nil:
		p.HourlyRate = *raw.PricePerHour
	case raw.Price != nil:
		p.HourlyRate = *raw.Price
	default:
		p.HourlyRate = decimal.Zero
	}

	return nil
}

func (p TeacherProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subjects     []FlexString    `json:"subjects"`
		HourlyRate   decimal.Decimal `json:"hourlyRate"`
		Availability []string        `json:"availability"`
		IsListed     bool            `json:"isListed"`
	}{p.Subjects, p.HourlyRate, p.Availability, p.IsListed})
}

// TeachesSubject reports whether the subject appears in the profile.
func (p TeacherProfile) TeachesSubject(subject string) bool {
	for _, s := range p.Subjects {
		if s.String() == subject {
			return true
		}
	}
	return false
}
