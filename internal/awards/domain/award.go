package domain

import (
	"time"
)

type Type string

const (
	TypeOfTheDay   Type = "otd"
	TypeOfTheMonth Type = "otm"
	TypeOfTheYear  Type = "oty"
	TypeHonorable  Type = "honorable"
)

func (t Type) Valid() bool {
	switch t {
	case TypeOfTheDay, TypeOfTheMonth, TypeOfTheYear, TypeHonorable:
		return true
	}
	return false
}

// Award is unique per (project, type).
type Award struct {
	ProjectID string    `json:"project_id"`
	Type      Type      `json:"award_type"`
	AwardedAt time.Time `json:"awarded_at"`
	CreatedAt time.Time `json:"created_at"`
}

// PeriodStart truncates at to the start of the type's period in UTC: the day
// for otd and honorable, the first of the month for otm, Jan 1 for oty.
func PeriodStart(t Type, at time.Time) time.Time {
	at = at.UTC()
	switch t {
	case TypeOfTheMonth:
		return time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	case TypeOfTheYear:
		return time.Date(at.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Normalize validates a grant and returns the date to store. The period of
// awardedAt may not precede the current period. Both are compared as UTC
// calendar periods, so west of UTC "today" rolls over during the evening.
func Normalize(t Type, awardedAt, now time.Time) (time.Time, error) {
	if !t.Valid() {
		return time.Time{}, ErrInvalidType
	}
	if awardedAt.IsZero() {
		return time.Time{}, ErrDateRequired
	}
	start := PeriodStart(t, awardedAt)
	if start.Before(PeriodStart(t, now)) {
		return time.Time{}, ErrDateInPast
	}
	return start, nil
}
