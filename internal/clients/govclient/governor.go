package govclient

import (
	"context"
	"errors"
	"sort"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/flexvote-io/flexvote/internal/clients/tokenclient"
	"github.com/flexvote-io/flexvote/internal/counting"
	"github.com/flexvote-io/flexvote/internal/types"
)

var (
	// ErrUnknownProposal is returned for proposal ids the governor has never
	// seen.
	ErrUnknownProposal = errors.New("unknown proposal")
	// ErrProposalNotActive is returned when a cast arrives outside the
	// proposal's voting window. Terminal, never retryable.
	ErrProposalNotActive = errors.New("proposal is not in the active voting window")
)

// Clock exposes the ledger's logical height. The token ledger implements it.
type Clock interface {
	CurrentTimeIndex() uint64
}

type proposal struct {
	snapshot uint64
	deadline uint64
}

// Governor is an in-process governance ledger hosting the fractional
// vote-counting engine. Proposal lifecycle is minimal: state derives from
// the clock against the proposal's snapshot/deadline window, with the
// outcome decided by for-versus-against tallies once the window closes.
// Abstain weight counts toward participation, never toward the outcome.
type Governor struct {
	mu sync.Mutex

	token     tokenclient.TokenInterface
	clock     Clock
	engine    *counting.Engine
	proposals map[uint64]proposal
}

func NewGovernor(token tokenclient.TokenInterface, clock Clock) *Governor {
	return &Governor{
		token:     token,
		clock:     clock,
		engine:    counting.NewEngine(),
		proposals: make(map[uint64]proposal),
	}
}

// AddProposal registers a proposal with its frozen snapshot and deadline
// time indexes. Content validation is out of scope here.
func (g *Governor) AddProposal(proposalID, snapshot, deadline uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.proposals[proposalID] = proposal{snapshot: snapshot, deadline: deadline}
}

func (g *Governor) ProposalSnapshot(_ context.Context, proposalID uint64) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.proposals[proposalID]
	if !ok {
		return 0, ErrUnknownProposal
	}
	return p.snapshot, nil
}

func (g *Governor) ProposalDeadline(_ context.Context, proposalID uint64) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.proposals[proposalID]
	if !ok {
		return 0, ErrUnknownProposal
	}
	return p.deadline, nil
}

func (g *Governor) State(_ context.Context, proposalID uint64) (types.ProposalState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state(proposalID)
}

func (g *Governor) state(proposalID uint64) (types.ProposalState, error) {
	p, ok := g.proposals[proposalID]
	if !ok {
		return "", ErrUnknownProposal
	}
	now := g.clock.CurrentTimeIndex()
	switch {
	case now < p.snapshot:
		return types.StatePending, nil
	case now <= p.deadline:
		return types.StateActive, nil
	}
	against, forVotes, _ := g.engine.ProposalVotes(proposalID)
	if forVotes.GT(against) {
		return types.StateSucceeded, nil
	}
	return types.StateDefeated, nil
}

// CastVoteWithReasonAndParams counts a vote for voter. The voter's
// entitlement is read once from the token ledger's historical query at the
// proposal snapshot; the counting engine enforces that cumulative cast
// weight stays within it.
func (g *Governor) CastVoteWithReasonAndParams(
	ctx context.Context,
	proposalID uint64,
	voter string,
	support types.VoteSupport,
	reason string,
	params []byte,
) (sdkmath.Uint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.state(proposalID)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	if !state.AcceptsVotes() {
		return sdkmath.ZeroUint(), ErrProposalNotActive
	}

	entitlement, err := g.token.GetPastVotes(ctx, voter, g.proposals[proposalID].snapshot)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}

	weight, err := g.engine.CountVote(proposalID, voter, support, entitlement, params)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}

	log.Ctx(ctx).Debug().
		Uint64("proposal_id", proposalID).
		Str("voter", voter).
		Str("weight", weight.String()).
		Bool("fractional", len(params) > 0).
		Msg("Vote counted")

	return weight, nil
}

func (g *Governor) GetProposalVotes(_ context.Context, proposalID uint64) (ProposalVotes, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.proposals[proposalID]; !ok {
		return ProposalVotes{}, ErrUnknownProposal
	}
	against, forVotes, abstain := g.engine.ProposalVotes(proposalID)
	return ProposalVotes{
		AgainstVotes: against,
		ForVotes:     forVotes,
		AbstainVotes: abstain,
	}, nil
}

// ActiveProposals returns ids of proposals currently accepting votes, in
// ascending order, capped at limit.
func (g *Governor) ActiveProposals(limit uint64) []uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]uint64, 0, len(g.proposals))
	for id := range g.proposals {
		state, err := g.state(id)
		if err != nil || !state.AcceptsVotes() {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if uint64(len(ids)) > limit {
		ids = ids[:limit]
	}
	return ids
}

// HasVoted reports whether voter has cast any weight on the proposal.
func (g *Governor) HasVoted(proposalID uint64, voter string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.HasVoted(proposalID, voter)
}
