package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessCutMonthlyCap is the maximum number of granted mess-cut days a student can
// accumulate inside one calendar month.
const MessCutMonthlyCap = 10

// MessCutCutoffHour is the local hour after which applications close for the day.
// Requests at or after 21:00 are rejected until the next morning.
const MessCutCutoffHour = 21

// DateLayout is the canonical civil-date format used across the mess ledgers.
const DateLayout = "2006-01-02"

// MonthLayout keys monthly records (quota ledger, bills).
const MonthLayout = "2006-01"

// MessCutApplication is an auto-approved leave block. Applications are append-only:
// granted days are computed once at application time and never edited or cancelled,
// which keeps the monthly quota ledger auditable.
type MessCutApplication struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessNo        string             `bson:"mess_no" json:"mess_no"`
	FromDate      time.Time          `bson:"from_date" json:"from_date"`
	ToDate        time.Time          `bson:"to_date" json:"to_date"`
	RequestedDays int                `bson:"requested_days" json:"requested_days"`
	GrantedDays   int                `bson:"granted_days" json:"granted_days"`
	Month         string             `bson:"month" json:"month"`
	AppliedAt     time.Time          `bson:"applied_at" json:"applied_at"`
}

// Covers reports whether the cut blocks attendance on the given date.
func (a MessCutApplication) Covers(date time.Time) bool {
	d := DateOnly(date)
	return a.GrantedDays > 0 && !d.Before(DateOnly(a.FromDate)) && !d.After(DateOnly(a.ToDate))
}

// GrantedWithin limits the cut's discount to its overlap with an inclusive date
// window. A cut spanning a month boundary contributes to each month only the days
// it actually covers there, never its full grant on both sides.
func (a MessCutApplication) GrantedWithin(start, end time.Time) int {
	from, to := DateOnly(a.FromDate), DateOnly(a.ToDate)
	if s := DateOnly(start); from.Before(s) {
		from = s
	}
	if e := DateOnly(end); to.After(e) {
		to = e
	}
	if to.Before(from) {
		return 0
	}
	overlap := RequestedDays(from, to)
	if a.GrantedDays < overlap {
		return a.GrantedDays
	}
	return overlap
}

// RequestedDays counts the inclusive span of a date range.
func RequestedDays(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours()/24) + 1
}

// GrantedDays applies the auto-approval formula: short cuts of up to three days
// absorb one day as a cost to the student, four days or more are credited in full.
func GrantedDays(requested int) int {
	if requested <= 0 {
		return 0
	}
	if requested <= 3 {
		return requested - 1
	}
	return requested
}

// DateOnly truncates a timestamp to its civil date in UTC. All ledger dates are
// stored this way so range comparisons are exact day arithmetic.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey formats the quota/billing month key for a date.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}
