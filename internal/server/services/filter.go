package services

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// Status filters records by payment state.
type Status string

const (
	StatusAll    Status = "all"
	StatusPaid   Status = "paid"
	StatusUnpaid Status = "unpaid"
)

// DateRange filters records by creation time relative to now.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
)

// Filter narrows a decrypted result set in memory. Text search runs over
// plaintext fields, including the ones that are ciphertext at rest; that is
// the whole point of decrypt-then-filter.
type Filter struct {
	Search    string
	UserID    string
	Status    Status
	DateRange DateRange
	MinAmount *float64
	MaxAmount *float64
}

// Apply returns the records matching the filter, preserving order.
func (f *Filter) Apply(recs []*models.ContributionWithUsers, now time.Time) []*models.ContributionWithUsers {
	result := make([]*models.ContributionWithUsers, 0, len(recs))
	for _, rec := range recs {
		if f.matches(rec, now) {
			result = append(result, rec)
		}
	}
	return result
}

func (f *Filter) matches(c *models.ContributionWithUsers, now time.Time) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.FirstName), needle) &&
			!strings.Contains(strings.ToLower(c.LastName), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) &&
			!strings.Contains(strings.ToLower(c.Address), needle) &&
			!strings.Contains(strings.ToLower(c.City), needle) &&
			!strings.Contains(strings.ToLower(c.PostalCode), needle) {
			return false
		}
	}

	if f.UserID != "" && c.UserID != f.UserID {
		return false
	}

	switch f.Status {
	case StatusPaid:
		if !c.Paid {
			return false
		}
	case StatusUnpaid:
		if c.Paid {
			return false
		}
	}

	if !f.matchesDate(c.CreatedAt, now) {
		return false
	}

	if f.MinAmount != nil && c.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && c.Amount > *f.MaxAmount {
		return false
	}

	return true
}

func (f *Filter) matchesDate(createdAt, now time.Time) bool {
	switch f.DateRange {
	case RangeToday:
		y1, m1, d1 := createdAt.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case RangeWeek:
		return !createdAt.Before(now.AddDate(0, 0, -7))
	case RangeMonth:
		return !createdAt.Before(now.AddDate(0, -1, 0))
	case RangeYear:
		return !createdAt.Before(now.AddDate(-1, 0, 0))
	default:
		return true
	}
}
