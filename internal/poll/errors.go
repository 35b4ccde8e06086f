package poll

import "errors"

var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrPollNotActive    = errors.New("poll is not active")
	ErrPollClosed       = errors.New("poll is closed")
	ErrPollNotResolved  = errors.New("poll is not resolved yet")
	ErrAlreadyResolved  = errors.New("poll already resolved")
	ErrPollCanceled     = errors.New("poll is canceled")
	ErrUnauthorized     = errors.New("unauthorized action")
	ErrInvalidShares    = errors.New("initial shares must be greater than zero")
	ErrDuplicateOutcome = errors.New("outcome identifiers must differ")
	ErrClosesAtPast     = errors.New("closes_at must be strictly in the future")
	ErrInvalidOutcome   = errors.New("winning outcome must be one of the poll outcomes")
)
