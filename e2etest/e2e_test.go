//go:build e2e

package e2etest

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/flexvote-io/flexvote/internal/services"
	"github.com/flexvote-io/flexvote/internal/types"
	"github.com/flexvote-io/flexvote/testutil"
)

func TestPoolEventFlow(t *testing.T) {
	ctx := t.Context()
	tm := StartManager(t, ctx)

	alice := testutil.RandomAddress()
	bob := testutil.RandomAddress()

	events := []services.PoolEvent{
		{
			EventID: testutil.RandomEventID(),
			Type:    types.EventDeposit.String(),
			Height:  1, Seq: 1,
			User:   alice,
			Amount: "100",
		},
		{
			EventID: testutil.RandomEventID(),
			Type:    types.EventDeposit.String(),
			Height:  1, Seq: 2,
			User:   bob,
			Amount: "40",
		},
		{
			EventID:    testutil.RandomEventID(),
			Type:       types.EventProposalCreated.String(),
			Height:     1, Seq: 3,
			ProposalID: 1,
			Snapshot:   2,
			Deadline:   1000,
		},
		{
			EventID: testutil.RandomEventID(),
			Type:    types.EventHeightAdvanced.String(),
			Height:  3, Seq: 4,
		},
		{
			EventID:    testutil.RandomEventID(),
			Type:       types.EventExpressVote.String(),
			Height:     3, Seq: 5,
			ProposalID: 1,
			User:       alice,
			Support:    uint8(types.SupportFor),
		},
		{
			EventID:    testutil.RandomEventID(),
			Type:       types.EventExpressVote.String(),
			Height:     3, Seq: 6,
			ProposalID: 1,
			User:       bob,
			Support:    uint8(types.SupportAgainst),
		},
	}
	for _, event := range events {
		tm.PublishEvent(t, ctx, event)
	}

	// consumer applies the stream, cast poller forwards to the governor
	require.Eventually(t, func() bool {
		votes, err := tm.Governor.GetProposalVotes(ctx, 1)
		if err != nil {
			return false
		}
		return votes.ForVotes.Equal(sdkmath.NewUint(100)) &&
			votes.AgainstVotes.Equal(sdkmath.NewUint(40))
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	progress, err := tm.Db.GetCastProgress(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "100", progress.ForVotes)
	require.Equal(t, "40", progress.AgainstVotes)

	t.Run("restart recovers state from event log", func(t *testing.T) {
		tm.startService(t, ctx)

		require.Eventually(t, func() bool {
			return tm.Pool.HasExpressed(1, alice) && tm.Pool.HasExpressed(1, bob)
		}, eventuallyWaitTimeOut, eventuallyPollTime)

		require.Equal(t, uint64(3), tm.Ledger.CurrentTimeIndex())

		balance, err := tm.Pool.RawBalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, sdkmath.NewUint(100), balance)

		// poller on the restarted service re-casts, totals stay intact
		require.Eventually(t, func() bool {
			votes, err := tm.Governor.GetProposalVotes(ctx, 1)
			if err != nil {
				return false
			}
			return votes.ForVotes.Equal(sdkmath.NewUint(100)) &&
				votes.AgainstVotes.Equal(sdkmath.NewUint(40))
		}, eventuallyWaitTimeOut, eventuallyPollTime)
	})
}
