package pool

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/flexvote-io/flexvote/internal/checkpoints"
	"github.com/flexvote-io/flexvote/internal/clients/govclient"
	"github.com/flexvote-io/flexvote/internal/clients/tokenclient"
	"github.com/flexvote-io/flexvote/internal/counting"
	"github.com/flexvote-io/flexvote/internal/types"
)

// tally is the pool-internal vote state for one proposal: expressed weight
// per bucket, the set of depositors who expressed, and the scaled weight
// already forwarded to the governance ledger. It grows until fully cast and
// never shrinks.
type tally struct {
	expressed counting.Split
	voters    map[string]types.VoteSupport
	cast      counting.Split
}

func newTally() *tally {
	return &tally{
		expressed: zeroSplit(),
		voters:    make(map[string]types.VoteSupport),
		cast:      zeroSplit(),
	}
}

// Pool holds tokens on behalf of depositors and rolls their individually
// expressed preferences into one proportionally scaled vote on the
// governance ledger. Raw deposits are checkpointed per depositor and in
// total; the pool's actual token balance may drift from the raw total
// through external effects, and casting scales expressed weight down to the
// actual balance at the proposal snapshot so no weight is ever manufactured.
type Pool struct {
	mu sync.Mutex

	address string
	gov     govclient.GovInterface
	token   tokenclient.TokenInterface
	clock   govclient.Clock

	deposits *checkpoints.Store
	weights  *checkpoints.Store
	total    *checkpoints.Sequence

	delegateOf map[string]string
	tallies    map[uint64]*tally
	balances   RawBalanceSource
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithRawBalanceSource swaps the capability used to read a depositor's
// current raw balance.
func WithRawBalanceSource(src RawBalanceSource) Option {
	return func(p *Pool) {
		p.balances = src
	}
}

func NewPool(
	address string,
	gov govclient.GovInterface,
	token tokenclient.TokenInterface,
	clock govclient.Clock,
	opts ...Option,
) *Pool {
	p := &Pool{
		address:    address,
		gov:        gov,
		token:      token,
		clock:      clock,
		deposits:   checkpoints.NewStore(),
		weights:    checkpoints.NewStore(),
		total:      checkpoints.NewSequence(),
		delegateOf: make(map[string]string),
		tallies:    make(map[uint64]*tally),
	}
	p.balances = NewDepositBalanceSource(p.deposits)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Address returns the pool's identity on the token and governance ledgers.
func (p *Pool) Address() string {
	return p.address
}

// Deposit transfers amount from the depositor into the pool and checkpoints
// the depositor's raw balance, the current delegatee's voting weight, and
// the pool total at the current time index. Zero amounts are permitted and
// are no-ops beyond bookkeeping.
func (p *Pool) Deposit(ctx context.Context, depositor string, amount sdkmath.Uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Guard the fixed-width limit before moving tokens so a failed
	// checkpoint never strands a transfer.
	if p.total.Latest().Add(amount).GT(checkpoints.MaxValue) {
		return checkpoints.ErrOverflow
	}

	if err := p.token.Transfer(ctx, depositor, p.address, amount); err != nil {
		return err
	}

	now := p.clock.CurrentTimeIndex()
	if err := p.deposits.Sequence(depositor).Add(now, amount); err != nil {
		return err
	}
	if err := p.weights.Sequence(p.delegate(depositor)).Add(now, amount); err != nil {
		return err
	}
	return p.total.Add(now, amount)
}

// Withdraw transfers amount back to the depositor, failing with Underflow
// when it exceeds the depositor's current raw balance. Withdrawing does not
// require having expressed; weight already expressed at an earlier snapshot
// survives the withdrawal.
func (p *Pool) Withdraw(ctx context.Context, depositor string, amount sdkmath.Uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	balance, err := p.balances.RawBalanceOf(ctx, depositor)
	if err != nil {
		return err
	}
	if amount.GT(balance) {
		return checkpoints.ErrUnderflow
	}

	now := p.clock.CurrentTimeIndex()
	if err := p.deposits.Sequence(depositor).Sub(now, amount); err != nil {
		return err
	}
	// The delegatee's weight includes the depositor's full balance, so this
	// cannot underflow while the deposit checkpoint holds.
	if err := p.weights.Sequence(p.delegate(depositor)).Sub(now, amount); err != nil {
		return err
	}
	if err := p.total.Sub(now, amount); err != nil {
		return err
	}

	return p.token.Transfer(ctx, p.address, depositor, amount)
}

// Delegate redirects the depositor's pooled voting weight to delegatee.
// Deposit ownership stays with the depositor; only the weight checkpoint
// moves, so historical snapshot queries stay correct.
func (p *Pool) Delegate(depositor, delegatee string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.delegate(depositor)
	if previous == delegatee {
		return nil
	}

	now := p.clock.CurrentTimeIndex()
	balance := p.deposits.Sequence(depositor).Latest()
	if err := p.weights.Sequence(previous).Sub(now, balance); err != nil {
		return err
	}
	if err := p.weights.Sequence(delegatee).Add(now, balance); err != nil {
		return err
	}
	p.delegateOf[depositor] = delegatee
	return nil
}

// ExpressVote records the voter's full snapshot-time weight in the pool's
// internal tally bucket for support. The weight used is the voter's
// delegation-aware weight as of the proposal snapshot, never the current
// balance.
func (p *Pool) ExpressVote(ctx context.Context, proposalID uint64, voter string, support types.VoteSupport) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !support.Valid() {
		return ErrInvalidSupportValue
	}

	state, err := p.gov.State(ctx, proposalID)
	if err != nil {
		return err
	}
	if !state.AcceptsVotes() {
		return govclient.ErrProposalNotActive
	}

	snapshot, err := p.gov.ProposalSnapshot(ctx, proposalID)
	if err != nil {
		return err
	}

	weight := p.weights.Sequence(voter).ValueAt(snapshot)
	if weight.IsZero() {
		return ErrNoVotingWeight
	}

	t := p.tally(proposalID)
	if _, voted := t.voters[voter]; voted {
		return ErrAlreadyVoted
	}

	switch support {
	case types.SupportAgainst:
		t.expressed.AgainstVotes = t.expressed.AgainstVotes.Add(weight)
	case types.SupportFor:
		t.expressed.ForVotes = t.expressed.ForVotes.Add(weight)
	case types.SupportAbstain:
		t.expressed.AbstainVotes = t.expressed.AbstainVotes.Add(weight)
	}
	t.voters[voter] = support

	log.Ctx(ctx).Debug().
		Uint64("proposal_id", proposalID).
		Str("voter", voter).
		Str("support", support.String()).
		Str("weight", weight.String()).
		Msg("Vote expressed")

	return nil
}

// CastVote scales the internally expressed tally to the pool's actual token
// balance at the proposal snapshot and forwards only the delta since the
// last cast as a fractional vote. Safe to call repeatedly and by anyone:
// each call forwards only never-previously-submitted weight, and fails with
// ErrNoVotesExpressed when there is nothing new.
func (p *Pool) CastVote(ctx context.Context, proposalID uint64) (counting.Split, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tallies[proposalID]
	if !ok {
		return zeroSplit(), ErrNoVotesExpressed
	}

	snapshot, err := p.gov.ProposalSnapshot(ctx, proposalID)
	if err != nil {
		return zeroSplit(), err
	}

	rawWeight := p.total.ValueAt(snapshot)
	if rawWeight.IsZero() {
		return zeroSplit(), ErrNoVotesExpressed
	}
	actualWeight, err := p.token.GetPastVotes(ctx, p.address, snapshot)
	if err != nil {
		return zeroSplit(), err
	}

	scaled := counting.Split{
		AgainstVotes: scaleWeight(t.expressed.AgainstVotes, actualWeight, rawWeight),
		ForVotes:     scaleWeight(t.expressed.ForVotes, actualWeight, rawWeight),
		AbstainVotes: scaleWeight(t.expressed.AbstainVotes, actualWeight, rawWeight),
	}

	delta := counting.Split{
		AgainstVotes: uncast(scaled.AgainstVotes, t.cast.AgainstVotes),
		ForVotes:     uncast(scaled.ForVotes, t.cast.ForVotes),
		AbstainVotes: uncast(scaled.AbstainVotes, t.cast.AbstainVotes),
	}
	if delta.Sum().IsZero() {
		return zeroSplit(), ErrNoVotesExpressed
	}

	params, err := counting.EncodeSplit(delta)
	if err != nil {
		return zeroSplit(), err
	}

	// The support argument is ignored for fractional casts; the split
	// payload carries the full three-way assignment.
	if _, err := p.gov.CastVoteWithReasonAndParams(
		ctx, proposalID, p.address, types.SupportAbstain, "", params,
	); err != nil {
		return zeroSplit(), err
	}

	t.cast = counting.Split{
		AgainstVotes: t.cast.AgainstVotes.Add(delta.AgainstVotes),
		ForVotes:     t.cast.ForVotes.Add(delta.ForVotes),
		AbstainVotes: t.cast.AbstainVotes.Add(delta.AbstainVotes),
	}

	log.Ctx(ctx).Info().
		Uint64("proposal_id", proposalID).
		Str("against", delta.AgainstVotes.String()).
		Str("for", delta.ForVotes.String()).
		Str("abstain", delta.AbstainVotes.String()).
		Msg("Cast incremental pool vote")

	return delta, nil
}

// GetPastRawBalance returns the depositor's raw deposit balance as of
// timeIndex.
func (p *Pool) GetPastRawBalance(depositor string, timeIndex uint64) sdkmath.Uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deposits.Sequence(depositor).ValueAt(timeIndex)
}

// GetPastTotalBalance returns the pool's raw deposit total as of timeIndex.
func (p *Pool) GetPastTotalBalance(timeIndex uint64) sdkmath.Uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total.ValueAt(timeIndex)
}

// GetPastVotingWeight returns the delegation-aware weight of an address as
// of timeIndex: its own raw balance plus all weight delegated to it.
func (p *Pool) GetPastVotingWeight(address string, timeIndex uint64) sdkmath.Uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.weights.Sequence(address).ValueAt(timeIndex)
}

// RawBalanceOf returns the depositor's current raw balance through the
// configured source.
func (p *Pool) RawBalanceOf(ctx context.Context, depositor string) (sdkmath.Uint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances.RawBalanceOf(ctx, depositor)
}

// ProposalVotes returns the pool-internal expressed tally and the scaled
// weight already cast for a proposal.
func (p *Pool) ProposalVotes(proposalID uint64) (expressed, cast counting.Split) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tallies[proposalID]
	if !ok {
		return zeroSplit(), zeroSplit()
	}
	return t.expressed, t.cast
}

// HasExpressed reports whether the voter already expressed on the proposal.
func (p *Pool) HasExpressed(proposalID uint64, voter string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tallies[proposalID]
	if !ok {
		return false
	}
	_, voted := t.voters[voter]
	return voted
}

// DelegateOf returns the depositor's current delegatee (self by default).
func (p *Pool) DelegateOf(depositor string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delegate(depositor)
}

func (p *Pool) tally(proposalID uint64) *tally {
	t, ok := p.tallies[proposalID]
	if !ok {
		t = newTally()
		p.tallies[proposalID] = t
	}
	return t
}

func (p *Pool) delegate(depositor string) string {
	if d, ok := p.delegateOf[depositor]; ok {
		return d
	}
	return depositor
}

// scaleWeight maps expressed weight to actual weight by the actual/raw
// ratio at the snapshot, rounding down. The scaled buckets in total never
// exceed the actual balance, so weight cannot be manufactured.
func scaleWeight(expressed, actual, raw sdkmath.Uint) sdkmath.Uint {
	if actual.Equal(raw) {
		return expressed
	}
	return expressed.Mul(actual).Quo(raw)
}

// uncast returns scaled minus alreadyCast, clamping at zero.
func uncast(scaled, alreadyCast sdkmath.Uint) sdkmath.Uint {
	if alreadyCast.GTE(scaled) {
		return sdkmath.ZeroUint()
	}
	return scaled.Sub(alreadyCast)
}

func zeroSplit() counting.Split {
	return counting.Split{
		AgainstVotes: sdkmath.ZeroUint(),
		ForVotes:     sdkmath.ZeroUint(),
		AbstainVotes: sdkmath.ZeroUint(),
	}
}
