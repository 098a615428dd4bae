package govclient

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/flexvote-io/flexvote/internal/observability/metrics"
	"github.com/flexvote-io/flexvote/internal/types"
)

type govClientWithMetrics struct {
	gov GovInterface
}

func NewGovClientWithMetrics(gov GovInterface) *govClientWithMetrics {
	return &govClientWithMetrics{gov: gov}
}

func (g *govClientWithMetrics) ProposalSnapshot(ctx context.Context, proposalID uint64) (uint64, error) {
	return runGovClientMethodWithMetrics("ProposalSnapshot", func() (uint64, error) {
		return g.gov.ProposalSnapshot(ctx, proposalID)
	})
}

func (g *govClientWithMetrics) ProposalDeadline(ctx context.Context, proposalID uint64) (uint64, error) {
	return runGovClientMethodWithMetrics("ProposalDeadline", func() (uint64, error) {
		return g.gov.ProposalDeadline(ctx, proposalID)
	})
}

func (g *govClientWithMetrics) State(ctx context.Context, proposalID uint64) (types.ProposalState, error) {
	return runGovClientMethodWithMetrics("State", func() (types.ProposalState, error) {
		return g.gov.State(ctx, proposalID)
	})
}

func (g *govClientWithMetrics) CastVoteWithReasonAndParams(
	ctx context.Context,
	proposalID uint64,
	voter string,
	support types.VoteSupport,
	reason string,
	params []byte,
) (sdkmath.Uint, error) {
	return runGovClientMethodWithMetrics("CastVoteWithReasonAndParams", func() (sdkmath.Uint, error) {
		return g.gov.CastVoteWithReasonAndParams(ctx, proposalID, voter, support, reason, params)
	})
}

func (g *govClientWithMetrics) GetProposalVotes(ctx context.Context, proposalID uint64) (ProposalVotes, error) {
	return runGovClientMethodWithMetrics("GetProposalVotes", func() (ProposalVotes, error) {
		return g.gov.GetProposalVotes(ctx, proposalID)
	})
}

func runGovClientMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordGovClientLatency(duration, method, err != nil)
	return v, err
}
