package models

import (
	"errors"
	"fmt"
)

// Caller errors. These always reach the caller unchanged and are never retried.
var (
	ErrApplicationWindowClosed = errors.New("mess cut applications are closed after 21:00")
	ErrInvalidDateRange        = errors.New("invalid mess cut date range")
	ErrMessCutActive           = errors.New("student has an active mess cut for this date")
	ErrStudentNotApproved      = errors.New("student is not approved")
	ErrStudentNotFound         = errors.New("student not found")
	ErrStudentExists           = errors.New("mess number already registered")
	ErrAlreadyDecided          = errors.New("registration already decided")
	ErrUnparsableIdentifier    = errors.New("leave identifier matches no known format")
	ErrBillNotFound            = errors.New("bill not found")
	ErrBillExists              = errors.New("bill already generated for this month")
	ErrInvalidTransition       = errors.New("invalid bill status transition")
	ErrMissingReference        = errors.New("transaction reference is required")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
)

// ErrCollaboratorUnavailable tags failures of the persistence or notification
// collaborators so adapters can distinguish them from caller errors.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// QuotaExceededError reports a mess-cut request that would push a student past the
// monthly cap, carrying how many days are still available.
type QuotaExceededError struct {
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly mess cut quota exceeded, %d day(s) remaining", e.Remaining)
}

// IsCallerError reports whether err is a bad-input/timing/quota failure rather
// than a collaborator outage.
func IsCallerError(err error) bool {
	var quota *QuotaExceededError
	if errors.As(err, &quota) {
		return true
	}
	for _, known := range []error{
		ErrApplicationWindowClosed, ErrInvalidDateRange, ErrMessCutActive,
		ErrStudentNotApproved, ErrStudentNotFound, ErrStudentExists, ErrAlreadyDecided,
		ErrUnparsableIdentifier, ErrBillNotFound, ErrBillExists,
		ErrInvalidTransition, ErrMissingReference, ErrInvalidAmount,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
