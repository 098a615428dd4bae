package pool

import "errors"

var (
	// ErrNoVotingWeight is returned when a depositor with zero weight at the
	// proposal snapshot tries to express a preference.
	ErrNoVotingWeight = errors.New("depositor has no voting weight at the proposal snapshot")
	// ErrAlreadyVoted is returned when a depositor expresses twice on the
	// same proposal.
	ErrAlreadyVoted = errors.New("depositor has already expressed a vote for this proposal")
	// ErrInvalidSupportValue is returned for an unrecognized ballot category.
	ErrInvalidSupportValue = errors.New("unrecognized vote support value")
	// ErrNoVotesExpressed is returned when a cast finds nothing new to
	// forward to the governance ledger.
	ErrNoVotesExpressed = errors.New("no uncast expressed votes for this proposal")
)
