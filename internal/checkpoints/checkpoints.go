package checkpoints

import (
	"errors"
	"sort"

	sdkmath "cosmossdk.io/math"
)

var (
	// ErrOverflow is returned when a push would exceed the fixed-width limit.
	ErrOverflow = errors.New("checkpoint value overflows the fixed-width limit")
	// ErrUnderflow is returned when a negative delta exceeds the current value.
	ErrUnderflow = errors.New("checkpoint delta underflows the current value")
	// ErrTimeIndexRegressed is returned when a push carries a time index lower
	// than the latest recorded one.
	ErrTimeIndexRegressed = errors.New("checkpoint time index is lower than the latest recorded one")
)

// MaxValue is the largest value a checkpoint can hold. Weights cross the
// governance wire as 128-bit unsigned integers, so the ledger refuses
// anything wider.
var MaxValue = sdkmath.NewUintFromString("340282366920938463463374607431768211455")

// Checkpoint records a key's value as of a point in logical time.
type Checkpoint struct {
	TimeIndex uint64
	Value     sdkmath.Uint
}

// Sequence is an append-only series of checkpoints with strictly increasing
// time indexes. Pushing at the latest recorded time index overwrites the
// last entry, coalescing multiple updates in the same instant.
type Sequence struct {
	entries []Checkpoint
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Len() int {
	return len(s.entries)
}

// Latest returns the most recent value, or zero if the sequence is empty.
func (s *Sequence) Latest() sdkmath.Uint {
	if len(s.entries) == 0 {
		return sdkmath.ZeroUint()
	}
	return s.entries[len(s.entries)-1].Value
}

// LatestTimeIndex returns the time index of the most recent entry, or zero
// if the sequence is empty.
func (s *Sequence) LatestTimeIndex() uint64 {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[len(s.entries)-1].TimeIndex
}

// Push records value at timeIndex. The time index must not be lower than the
// latest recorded one; pushing at the same index overwrites the last entry.
func (s *Sequence) Push(timeIndex uint64, value sdkmath.Uint) error {
	if value.GT(MaxValue) {
		return ErrOverflow
	}
	if n := len(s.entries); n > 0 {
		last := &s.entries[n-1]
		if timeIndex < last.TimeIndex {
			return ErrTimeIndexRegressed
		}
		if timeIndex == last.TimeIndex {
			last.Value = value
			return nil
		}
	}
	s.entries = append(s.entries, Checkpoint{TimeIndex: timeIndex, Value: value})
	return nil
}

// Add pushes the current value increased by amount. Deposits are expressed
// through this path.
func (s *Sequence) Add(timeIndex uint64, amount sdkmath.Uint) error {
	next := s.Latest().Add(amount)
	if next.GT(MaxValue) {
		return ErrOverflow
	}
	return s.Push(timeIndex, next)
}

// Sub pushes the current value decreased by amount. Withdrawals are
// expressed through this path; amounts exceeding the current value fail
// with ErrUnderflow.
func (s *Sequence) Sub(timeIndex uint64, amount sdkmath.Uint) error {
	current := s.Latest()
	if amount.GT(current) {
		return ErrUnderflow
	}
	return s.Push(timeIndex, current.Sub(amount))
}

// ValueAt returns the value of the latest entry with a time index at or
// before timeIndex, or zero if no entry qualifies.
func (s *Sequence) ValueAt(timeIndex uint64) sdkmath.Uint {
	n := len(s.entries)
	if n == 0 {
		return sdkmath.ZeroUint()
	}
	// Fast path: at or past the latest entry the latest value is current.
	if timeIndex >= s.entries[n-1].TimeIndex {
		return s.entries[n-1].Value
	}
	// Find the first entry strictly after timeIndex; the one before it is
	// the latest entry at or before the query.
	idx := sort.Search(n, func(i int) bool {
		return s.entries[i].TimeIndex > timeIndex
	})
	if idx == 0 {
		return sdkmath.ZeroUint()
	}
	return s.entries[idx-1].Value
}

// Entries returns a copy of the recorded checkpoints in time order.
func (s *Sequence) Entries() []Checkpoint {
	out := make([]Checkpoint, len(s.entries))
	copy(out, s.entries)
	return out
}
