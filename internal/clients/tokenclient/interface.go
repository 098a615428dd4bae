package tokenclient

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// TokenInterface is the surface of the underlying votes-bearing token
// ledger the pool deposits into. The ledger owns delegation and historical
// voting-power queries; the pool is just one holder.
//
//go:generate mockery --name=TokenInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_token_client.go
type TokenInterface interface {
	BalanceOf(ctx context.Context, address string) (sdkmath.Uint, error)
	GetPastVotes(ctx context.Context, address string, timeIndex uint64) (sdkmath.Uint, error)
	Delegate(ctx context.Context, owner, delegatee string) error
	Transfer(ctx context.Context, from, to string, amount sdkmath.Uint) error
}
