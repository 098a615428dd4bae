package counting

import (
	sdkmath "cosmossdk.io/math"

	"github.com/flexvote-io/flexvote/internal/types"
)

// MaxWeight is the largest weight a single tally bucket can hold. Tallies
// are packed as 128-bit unsigned integers on the governance wire.
var MaxWeight = sdkmath.NewUintFromString("340282366920938463463374607431768211455")

// Tally holds the per-proposal packed vote counts.
type Tally struct {
	AgainstVotes sdkmath.Uint
	ForVotes     sdkmath.Uint
	AbstainVotes sdkmath.Uint
}

func newTally() *Tally {
	return &Tally{
		AgainstVotes: sdkmath.ZeroUint(),
		ForVotes:     sdkmath.ZeroUint(),
		AbstainVotes: sdkmath.ZeroUint(),
	}
}

// receipt tracks one voter's cast history on one proposal. A nominal cast
// consumes the entire entitlement and permanently blocks further casts;
// fractional casts accumulate in usedWeight until the entitlement is
// exhausted.
type receipt struct {
	usedWeight sdkmath.Uint
	nominal    bool
}

// Engine is the fractional vote-counting module of the governance ledger.
// It enforces, per voter per proposal, that cumulative cast weight never
// exceeds the voter's entitlement at the proposal snapshot. Entitlements
// are read once by the caller from the token ledger's historical query and
// passed in; the engine treats them as immutable for the proposal's life.
type Engine struct {
	tallies  map[uint64]*Tally
	receipts map[uint64]map[string]*receipt
}

func NewEngine() *Engine {
	return &Engine{
		tallies:  make(map[uint64]*Tally),
		receipts: make(map[uint64]map[string]*receipt),
	}
}

// CountVote applies one vote-casting call and returns the weight consumed.
//
// With no params the vote is nominal: the voter's entire entitlement goes to
// the bucket named by support, and the voter can never cast again on this
// proposal. With params present the vote is fractional: params must decode
// to a Split whose sum, together with all prior fractional casts, stays
// within the entitlement. A fractional cast after a nominal one, or a
// nominal cast after any prior cast, fails with ErrAlreadyVoted.
func (e *Engine) CountVote(
	proposalID uint64,
	voter string,
	support types.VoteSupport,
	entitlement sdkmath.Uint,
	params []byte,
) (sdkmath.Uint, error) {
	if entitlement.GT(MaxWeight) {
		return sdkmath.ZeroUint(), ErrWeightOverflow
	}

	r := e.receipt(proposalID, voter)
	tally := e.tally(proposalID)

	if len(params) == 0 {
		return e.countNominal(tally, r, support, entitlement)
	}
	return e.countFractional(tally, r, entitlement, params)
}

func (e *Engine) countNominal(
	tally *Tally, r *receipt, support types.VoteSupport, entitlement sdkmath.Uint,
) (sdkmath.Uint, error) {
	if r.nominal || !r.usedWeight.IsZero() {
		return sdkmath.ZeroUint(), ErrAlreadyVoted
	}
	if !support.Valid() {
		return sdkmath.ZeroUint(), ErrInvalidSupportValue
	}

	split := Split{
		AgainstVotes: sdkmath.ZeroUint(),
		ForVotes:     sdkmath.ZeroUint(),
		AbstainVotes: sdkmath.ZeroUint(),
	}
	switch support {
	case types.SupportAgainst:
		split.AgainstVotes = entitlement
	case types.SupportFor:
		split.ForVotes = entitlement
	case types.SupportAbstain:
		split.AbstainVotes = entitlement
	}

	if err := tally.apply(split); err != nil {
		return sdkmath.ZeroUint(), err
	}
	r.nominal = true
	r.usedWeight = entitlement
	return entitlement, nil
}

func (e *Engine) countFractional(
	tally *Tally, r *receipt, entitlement sdkmath.Uint, params []byte,
) (sdkmath.Uint, error) {
	if r.nominal {
		return sdkmath.ZeroUint(), ErrAlreadyVoted
	}

	split, err := DecodeSplit(params)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}

	sum := split.Sum()
	if r.usedWeight.Add(sum).GT(entitlement) {
		return sdkmath.ZeroUint(), ErrExceedsWeight
	}

	if err := tally.apply(split); err != nil {
		return sdkmath.ZeroUint(), err
	}
	r.usedWeight = r.usedWeight.Add(sum)
	return sum, nil
}

// apply adds a split to the tally, guarding each bucket's 128-bit width.
func (t *Tally) apply(split Split) error {
	against := t.AgainstVotes.Add(split.AgainstVotes)
	forVotes := t.ForVotes.Add(split.ForVotes)
	abstain := t.AbstainVotes.Add(split.AbstainVotes)
	if against.GT(MaxWeight) || forVotes.GT(MaxWeight) || abstain.GT(MaxWeight) {
		return ErrWeightOverflow
	}
	t.AgainstVotes = against
	t.ForVotes = forVotes
	t.AbstainVotes = abstain
	return nil
}

// ProposalVotes returns the packed tally for a proposal in ledger order
// (against, for, abstain). Unknown proposals report zero tallies.
func (e *Engine) ProposalVotes(proposalID uint64) (sdkmath.Uint, sdkmath.Uint, sdkmath.Uint) {
	t, ok := e.tallies[proposalID]
	if !ok {
		zero := sdkmath.ZeroUint()
		return zero, zero, zero
	}
	return t.AgainstVotes, t.ForVotes, t.AbstainVotes
}

// HasVoted reports whether the voter has cast any weight on the proposal.
func (e *Engine) HasVoted(proposalID uint64, voter string) bool {
	r, ok := e.receipts[proposalID][voter]
	return ok && (r.nominal || !r.usedWeight.IsZero())
}

// UsedVotes returns the voter's cumulative cast weight on the proposal.
func (e *Engine) UsedVotes(proposalID uint64, voter string) sdkmath.Uint {
	r, ok := e.receipts[proposalID][voter]
	if !ok {
		return sdkmath.ZeroUint()
	}
	return r.usedWeight
}

func (e *Engine) tally(proposalID uint64) *Tally {
	t, ok := e.tallies[proposalID]
	if !ok {
		t = newTally()
		e.tallies[proposalID] = t
	}
	return t
}

func (e *Engine) receipt(proposalID uint64, voter string) *receipt {
	byVoter, ok := e.receipts[proposalID]
	if !ok {
		byVoter = make(map[string]*receipt)
		e.receipts[proposalID] = byVoter
	}
	r, ok := byVoter[voter]
	if !ok {
		r = &receipt{usedWeight: sdkmath.ZeroUint()}
		byVoter[voter] = r
	}
	return r
}
