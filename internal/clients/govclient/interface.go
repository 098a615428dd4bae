package govclient

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/flexvote-io/flexvote/internal/types"
)

// ProposalVotes is the packed per-proposal tally in ledger order.
type ProposalVotes struct {
	AgainstVotes sdkmath.Uint
	ForVotes     sdkmath.Uint
	AbstainVotes sdkmath.Uint
}

// GovInterface is the governance ledger surface the pool votes against. The
// ledger owns the canonical tally and the proposal lifecycle; the pool is
// one voter among many.
//
//go:generate mockery --name=GovInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_gov_client.go
type GovInterface interface {
	ProposalSnapshot(ctx context.Context, proposalID uint64) (uint64, error)
	ProposalDeadline(ctx context.Context, proposalID uint64) (uint64, error)
	State(ctx context.Context, proposalID uint64) (types.ProposalState, error)
	// CastVoteWithReasonAndParams submits a vote for voter and returns the
	// weight recorded. Empty params cast nominally; a 48-byte split payload
	// casts fractionally.
	CastVoteWithReasonAndParams(
		ctx context.Context,
		proposalID uint64,
		voter string,
		support types.VoteSupport,
		reason string,
		params []byte,
	) (sdkmath.Uint, error)
	GetProposalVotes(ctx context.Context, proposalID uint64) (ProposalVotes, error)
}
