package pool

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/flexvote-io/flexvote/internal/checkpoints"
	"github.com/flexvote-io/flexvote/internal/clients/tokenclient"
)

// RawBalanceSource answers "what is this user's raw balance right now".
// Pool variants source it differently: plain deposit pools read their own
// checkpoint ledger, wrapped-token pools read the live share balance from
// the token ledger. The pool core depends only on this capability.
type RawBalanceSource interface {
	RawBalanceOf(ctx context.Context, user string) (sdkmath.Uint, error)
}

// DepositBalanceSource reads raw balances from a checkpoint store. This is
// the plain pool variant, where raw balance is exactly what was deposited.
type DepositBalanceSource struct {
	deposits *checkpoints.Store
}

func NewDepositBalanceSource(deposits *checkpoints.Store) *DepositBalanceSource {
	return &DepositBalanceSource{deposits: deposits}
}

func (s *DepositBalanceSource) RawBalanceOf(_ context.Context, user string) (sdkmath.Uint, error) {
	return s.deposits.Sequence(user).Latest(), nil
}

// LedgerBalanceSource reads raw balances live from the token ledger, for
// pools whose per-user holding is itself a fluctuating token balance
// (wrapped or interest-bearing shares).
type LedgerBalanceSource struct {
	token tokenclient.TokenInterface
}

func NewLedgerBalanceSource(token tokenclient.TokenInterface) *LedgerBalanceSource {
	return &LedgerBalanceSource{token: token}
}

func (s *LedgerBalanceSource) RawBalanceOf(ctx context.Context, user string) (sdkmath.Uint, error) {
	return s.token.BalanceOf(ctx, user)
}
