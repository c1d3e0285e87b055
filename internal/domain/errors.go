package domain

import "errors"

// Sentinel errors returned by ticket operations. Callers distinguish them
// with errors.Is; the HTTP edge maps them onto status codes.
var (
	// ErrInvalidTransition signals an illegal state change attempt.
	ErrInvalidTransition = errors.New("invalid ticket transition")

	// ErrDuplicateActiveTicket signals that the subject already has a
	// non-closed ticket. Policy: one active ticket per subject.
	ErrDuplicateActiveTicket = errors.New("subject already has an active ticket")

	// ErrAlreadyClosed is the benign idempotency signal for closing a
	// ticket that is already closed. Not a failure for most callers.
	ErrAlreadyClosed = errors.New("ticket already closed")

	// ErrInvalidRating signals a rating outside 1..3 or a second rating.
	ErrInvalidRating = errors.New("invalid ticket rating")

	// ErrSubjectBanned signals that the subject is on the ban list.
	ErrSubjectBanned = errors.New("subject is banned")
)
