package counting

import "errors"

var (
	// ErrAlreadyVoted is returned when a voter who has cast a nominal vote
	// attempts any further cast on the same proposal.
	ErrAlreadyVoted = errors.New("voter has already cast a nominal vote for this proposal")
	// ErrExceedsWeight is returned when a fractional cast would push the
	// voter's cumulative cast weight past their entitlement at the snapshot.
	ErrExceedsWeight = errors.New("cast weight exceeds the voter's remaining entitlement")
	// ErrInvalidVoteData is returned when a split payload does not match the
	// fixed encoding.
	ErrInvalidVoteData = errors.New("split payload does not match the fixed 48-byte encoding")
	// ErrInvalidSupportValue is returned for an unrecognized ballot category.
	ErrInvalidSupportValue = errors.New("unrecognized vote support value")
	// ErrWeightOverflow is returned when a weight does not fit the 128-bit
	// tally width.
	ErrWeightOverflow = errors.New("weight overflows the 128-bit tally width")
)
