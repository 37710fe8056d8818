package store

import "errors"

var (
	ErrEntryNotFound            = errors.New("queue entry not found")
	ErrPatientNotFound          = errors.New("patient not found")
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrDuplicateActiveAdmission = errors.New("patient already holds an active queue entry for this date")
	ErrIllegalTransition        = errors.New("illegal status transition")
	ErrSequenceConflict         = errors.New("conflicting concurrent queue write")
	ErrUnavailable              = errors.New("queue store unavailable")
)
