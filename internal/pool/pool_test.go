package pool

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexvote-io/flexvote/internal/checkpoints"
	"github.com/flexvote-io/flexvote/internal/clients/govclient"
	"github.com/flexvote-io/flexvote/internal/clients/tokenclient"
	"github.com/flexvote-io/flexvote/internal/types"
)

const (
	poolAddr = "pool"
	alice    = "alice"
	bob      = "bob"
	carol    = "carol"
)

type harness struct {
	ledger   *tokenclient.MemoryLedger
	governor *govclient.Governor
	pool     *Pool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ledger := tokenclient.NewMemoryLedger()
	governor := govclient.NewGovernor(ledger, ledger)
	p := NewPool(poolAddr, governor, ledger, ledger)

	// Fund the depositors.
	require.NoError(t, ledger.Mint(alice, sdkmath.NewUint(1_000)))
	require.NoError(t, ledger.Mint(bob, sdkmath.NewUint(1_000)))
	require.NoError(t, ledger.Mint(carol, sdkmath.NewUint(1_000)))

	return &harness{ledger: ledger, governor: governor, pool: p}
}

func (h *harness) advance(t *testing.T, height uint64) {
	t.Helper()
	require.NoError(t, h.ledger.AdvanceToHeight(height))
}

func TestDepositWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("deposits checkpoint depositor and total balances", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(50)))

		assert.True(t, h.pool.GetPastRawBalance(alice, 1).Equal(sdkmath.NewUint(100)))
		assert.True(t, h.pool.GetPastRawBalance(bob, 1).Equal(sdkmath.NewUint(50)))
		assert.True(t, h.pool.GetPastTotalBalance(1).Equal(sdkmath.NewUint(150)))

		// The pool now actually holds the tokens.
		balance, err := h.ledger.BalanceOf(ctx, poolAddr)
		require.NoError(t, err)
		assert.True(t, balance.Equal(sdkmath.NewUint(150)))
	})

	t.Run("zero-amount deposit is bookkeeping only", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.ZeroUint()))
		assert.True(t, h.pool.GetPastRawBalance(alice, 1).IsZero())
	})

	t.Run("withdraw beyond balance underflows", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(10)))

		err := h.pool.Withdraw(ctx, alice, sdkmath.NewUint(11))
		require.ErrorIs(t, err, checkpoints.ErrUnderflow)

		require.NoError(t, h.pool.Withdraw(ctx, alice, sdkmath.NewUint(10)))
		assert.True(t, h.pool.GetPastTotalBalance(1).IsZero())
	})

	t.Run("historical balances survive later withdrawals", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		h.advance(t, 5)
		require.NoError(t, h.pool.Withdraw(ctx, alice, sdkmath.NewUint(100)))

		assert.True(t, h.pool.GetPastRawBalance(alice, 4).Equal(sdkmath.NewUint(100)))
		assert.True(t, h.pool.GetPastRawBalance(alice, 5).IsZero())
	})
}

func TestExpressVote(t *testing.T) {
	ctx := context.Background()

	t.Run("requires weight at the snapshot, not now", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))

		h.governor.AddProposal(7, 2, 10)
		h.advance(t, 3)

		// Bob deposits after the snapshot; his weight at the snapshot is zero.
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(50)))
		err := h.pool.ExpressVote(ctx, 7, bob, types.SupportFor)
		require.ErrorIs(t, err, ErrNoVotingWeight)

		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
	})

	t.Run("double expression is rejected", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		h.governor.AddProposal(7, 2, 10)
		h.advance(t, 3)

		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
		err := h.pool.ExpressVote(ctx, 7, alice, types.SupportAgainst)
		require.ErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("invalid support is rejected", func(t *testing.T) {
		h := newHarness(t)
		err := h.pool.ExpressVote(ctx, 7, alice, types.VoteSupport(9))
		require.ErrorIs(t, err, ErrInvalidSupportValue)
	})

	t.Run("expressing outside the voting window is rejected", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		h.governor.AddProposal(7, 2, 4)

		// Pending: before the snapshot.
		err := h.pool.ExpressVote(ctx, 7, alice, types.SupportFor)
		require.ErrorIs(t, err, govclient.ErrProposalNotActive)

		// Closed: after the deadline.
		h.advance(t, 5)
		err = h.pool.ExpressVote(ctx, 7, alice, types.SupportFor)
		require.ErrorIs(t, err, govclient.ErrProposalNotActive)
	})
}

func TestCastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("scales expressed weight to the actual snapshot balance", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(50)))

		// An external effect shrinks the pool's actual balance to 120
		// before the snapshot: ratio 0.8.
		h.advance(t, 2)
		require.NoError(t, h.ledger.Burn(poolAddr, sdkmath.NewUint(30)))
		h.governor.AddProposal(7, 2, 10)

		h.advance(t, 3)
		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
		require.NoError(t, h.pool.ExpressVote(ctx, 7, bob, types.SupportAgainst))

		delta, err := h.pool.CastVote(ctx, 7)
		require.NoError(t, err)
		assert.True(t, delta.ForVotes.Equal(sdkmath.NewUint(80)))
		assert.True(t, delta.AgainstVotes.Equal(sdkmath.NewUint(40)))
		assert.True(t, delta.AbstainVotes.IsZero())

		votes, err := h.governor.GetProposalVotes(ctx, 7)
		require.NoError(t, err)
		assert.True(t, votes.ForVotes.Equal(sdkmath.NewUint(80)))
		assert.True(t, votes.AgainstVotes.Equal(sdkmath.NewUint(40)))

		// Total cast never exceeds the actual snapshot balance.
		total := votes.ForVotes.Add(votes.AgainstVotes).Add(votes.AbstainVotes)
		assert.True(t, total.LTE(sdkmath.NewUint(120)))
	})

	t.Run("repeat cast with nothing new fails, new expressions forward only the delta", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(50)))
		h.governor.AddProposal(7, 2, 10)
		h.advance(t, 3)

		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
		_, err := h.pool.CastVote(ctx, 7)
		require.NoError(t, err)

		_, err = h.pool.CastVote(ctx, 7)
		require.ErrorIs(t, err, ErrNoVotesExpressed)

		require.NoError(t, h.pool.ExpressVote(ctx, 7, bob, types.SupportAgainst))
		delta, err := h.pool.CastVote(ctx, 7)
		require.NoError(t, err)
		assert.True(t, delta.ForVotes.IsZero())
		assert.True(t, delta.AgainstVotes.Equal(sdkmath.NewUint(50)))

		votes, err := h.governor.GetProposalVotes(ctx, 7)
		require.NoError(t, err)
		assert.True(t, votes.ForVotes.Equal(sdkmath.NewUint(100)))
		assert.True(t, votes.AgainstVotes.Equal(sdkmath.NewUint(50)))
	})

	t.Run("cast with no expressions fails", func(t *testing.T) {
		h := newHarness(t)
		h.governor.AddProposal(7, 0, 10)
		_, err := h.pool.CastVote(ctx, 7)
		require.ErrorIs(t, err, ErrNoVotesExpressed)
	})

	t.Run("expression survives a full withdrawal before casting", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(10)))
		h.governor.AddProposal(7, 2, 10)
		h.advance(t, 3)

		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
		h.advance(t, 4)
		require.NoError(t, h.pool.Withdraw(ctx, alice, sdkmath.NewUint(10)))

		delta, err := h.pool.CastVote(ctx, 7)
		require.NoError(t, err)
		assert.True(t, delta.ForVotes.Equal(sdkmath.NewUint(10)))
	})

	t.Run("casting after the deadline is terminal", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(10)))
		h.governor.AddProposal(7, 2, 4)
		h.advance(t, 3)
		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))

		h.advance(t, 5)
		_, err := h.pool.CastVote(ctx, 7)
		require.ErrorIs(t, err, govclient.ErrProposalNotActive)
	})

	t.Run("weight conservation under growth and shrink", func(t *testing.T) {
		for name, adjust := range map[string]func(t *testing.T, h *harness){
			"shrink": func(t *testing.T, h *harness) {
				require.NoError(t, h.ledger.Burn(poolAddr, sdkmath.NewUint(77)))
			},
			"grow": func(t *testing.T, h *harness) {
				require.NoError(t, h.ledger.Mint(poolAddr, sdkmath.NewUint(133)))
			},
			"unchanged": func(t *testing.T, h *harness) {},
		} {
			t.Run(name, func(t *testing.T) {
				h := newHarness(t)
				h.advance(t, 1)
				require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(301)))
				require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(149)))
				require.NoError(t, h.pool.Deposit(ctx, carol, sdkmath.NewUint(50)))

				h.advance(t, 2)
				adjust(t, h)
				h.governor.AddProposal(7, 2, 10)

				actual, err := h.ledger.GetPastVotes(ctx, poolAddr, 2)
				require.NoError(t, err)

				h.advance(t, 3)
				require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
				_, err = h.pool.CastVote(ctx, 7)
				require.NoError(t, err)

				require.NoError(t, h.pool.ExpressVote(ctx, 7, bob, types.SupportAgainst))
				require.NoError(t, h.pool.ExpressVote(ctx, 7, carol, types.SupportAbstain))
				_, err = h.pool.CastVote(ctx, 7)
				require.NoError(t, err)

				votes, err := h.governor.GetProposalVotes(ctx, 7)
				require.NoError(t, err)
				total := votes.ForVotes.Add(votes.AgainstVotes).Add(votes.AbstainVotes)
				assert.True(t, total.LTE(actual),
					"cast %s must never exceed actual snapshot balance %s", total, actual)
			})
		}
	})

	t.Run("unexpressed weight is abandoned, never redistributed", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(100)))
		h.governor.AddProposal(7, 1, 10)
		h.advance(t, 2)

		// Only alice expresses; bob's 100 stays uncast.
		require.NoError(t, h.pool.ExpressVote(ctx, 7, alice, types.SupportFor))
		delta, err := h.pool.CastVote(ctx, 7)
		require.NoError(t, err)
		assert.True(t, delta.ForVotes.Equal(sdkmath.NewUint(100)))

		votes, err := h.governor.GetProposalVotes(ctx, 7)
		require.NoError(t, err)
		total := votes.ForVotes.Add(votes.AgainstVotes).Add(votes.AbstainVotes)
		assert.True(t, total.Equal(sdkmath.NewUint(100)))
	})
}

func TestDelegation(t *testing.T) {
	ctx := context.Background()

	t.Run("delegation moves voting weight but not deposit ownership", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(50)))

		h.advance(t, 2)
		require.NoError(t, h.pool.Delegate(alice, bob))

		assert.Equal(t, bob, h.pool.DelegateOf(alice))
		assert.True(t, h.pool.GetPastRawBalance(alice, 2).Equal(sdkmath.NewUint(100)))
		assert.True(t, h.pool.GetPastVotingWeight(alice, 2).IsZero())
		assert.True(t, h.pool.GetPastVotingWeight(bob, 2).Equal(sdkmath.NewUint(150)))

		// Historical weights before the change are untouched.
		assert.True(t, h.pool.GetPastVotingWeight(alice, 1).Equal(sdkmath.NewUint(100)))
		assert.True(t, h.pool.GetPastVotingWeight(bob, 1).Equal(sdkmath.NewUint(50)))
	})

	t.Run("delegatee expresses the combined weight", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(100)))
		require.NoError(t, h.pool.Deposit(ctx, bob, sdkmath.NewUint(50)))
		require.NoError(t, h.pool.Delegate(alice, bob))

		h.governor.AddProposal(7, 2, 10)
		h.advance(t, 3)

		// Alice delegated away; she has nothing to express.
		err := h.pool.ExpressVote(ctx, 7, alice, types.SupportFor)
		require.ErrorIs(t, err, ErrNoVotingWeight)

		require.NoError(t, h.pool.ExpressVote(ctx, 7, bob, types.SupportFor))
		delta, err := h.pool.CastVote(ctx, 7)
		require.NoError(t, err)
		assert.True(t, delta.ForVotes.Equal(sdkmath.NewUint(150)))
	})

	t.Run("depositing after delegating credits the delegatee", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(10)))
		require.NoError(t, h.pool.Delegate(alice, carol))
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(5)))

		assert.True(t, h.pool.GetPastVotingWeight(carol, 1).Equal(sdkmath.NewUint(15)))

		// Withdrawal debits the delegatee's weight too.
		require.NoError(t, h.pool.Withdraw(ctx, alice, sdkmath.NewUint(15)))
		assert.True(t, h.pool.GetPastVotingWeight(carol, 1).IsZero())
	})
}

func TestRawBalanceSources(t *testing.T) {
	ctx := context.Background()

	t.Run("deposit source reads the checkpoint ledger", func(t *testing.T) {
		h := newHarness(t)
		h.advance(t, 1)
		require.NoError(t, h.pool.Deposit(ctx, alice, sdkmath.NewUint(25)))

		balance, err := h.pool.RawBalanceOf(ctx, alice)
		require.NoError(t, err)
		assert.True(t, balance.Equal(sdkmath.NewUint(25)))
	})

	t.Run("ledger source reads the live token balance", func(t *testing.T) {
		ledger := tokenclient.NewMemoryLedger()
		governor := govclient.NewGovernor(ledger, ledger)
		p := NewPool(poolAddr, governor, ledger, ledger,
			WithRawBalanceSource(NewLedgerBalanceSource(ledger)))

		require.NoError(t, ledger.Mint(alice, sdkmath.NewUint(40)))
		balance, err := p.RawBalanceOf(ctx, alice)
		require.NoError(t, err)
		assert.True(t, balance.Equal(sdkmath.NewUint(40)))
	})
}
