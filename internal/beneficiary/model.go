package beneficiary

import (
	"errors"
	"time"
)

// ErrInvalidCadence indicates an unrecognized payment cadence.
var ErrInvalidCadence = errors.New("invalid cadence")

// Cadence is the configured recurrence for a beneficiary's automated payment.
type Cadence string

const (
	CadenceManual  Cadence = "manual"
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceYearly  Cadence = "yearly"
)

// Interval returns the fixed-length recurrence interval. Manual cadence has
// no interval and is never due via automation.
func (c Cadence) Interval() (time.Duration, bool) {
	switch c {
	case CadenceDaily:
		return 24 * time.Hour, true
	case CadenceWeekly:
		return 7 * 24 * time.Hour, true
	case CadenceMonthly:
		return 30 * 24 * time.Hour, true
	case CadenceYearly:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Valid reports whether the cadence is one of the known values.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceManual, CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceYearly:
		return true
	default:
		return false
	}
}

// Beneficiary is a named payment target owned by exactly one user.
type Beneficiary struct {
	ID           string
	OwnerID      string
	Target       string // external destination identity
	Name         string
	Relationship string
	Amount       int64
	Asset        string
	Cadence      Cadence
	LastPaidAt   *time.Time
	Active       bool
	TotalSent    int64
	CreatedAt    time.Time
}

// Due reports whether a cadence-based payment is due at the given instant.
func (b Beneficiary) Due(now time.Time) bool {
	interval, ok := b.Cadence.Interval()
	if !ok || !b.Active {
		return false
	}
	if b.LastPaidAt == nil {
		return true
	}
	return now.Sub(*b.LastPaidAt) >= interval
}

// NextRunAt returns the earliest instant an automated payment can run. For
// manual cadence or a never-paid beneficiary it returns now.
func (b Beneficiary) NextRunAt(now time.Time) time.Time {
	interval, ok := b.Cadence.Interval()
	if !ok || b.LastPaidAt == nil {
		return now
	}
	return b.LastPaidAt.Add(interval)
}
