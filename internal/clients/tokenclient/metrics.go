package tokenclient

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/flexvote-io/flexvote/internal/observability/metrics"
)

type tokenClientWithMetrics struct {
	token TokenInterface
}

func NewTokenClientWithMetrics(token TokenInterface) *tokenClientWithMetrics {
	return &tokenClientWithMetrics{token: token}
}

func (t *tokenClientWithMetrics) BalanceOf(ctx context.Context, address string) (sdkmath.Uint, error) {
	return runTokenClientMethodWithMetrics("BalanceOf", func() (sdkmath.Uint, error) {
		return t.token.BalanceOf(ctx, address)
	})
}

func (t *tokenClientWithMetrics) GetPastVotes(ctx context.Context, address string, timeIndex uint64) (sdkmath.Uint, error) {
	return runTokenClientMethodWithMetrics("GetPastVotes", func() (sdkmath.Uint, error) {
		return t.token.GetPastVotes(ctx, address, timeIndex)
	})
}

func (t *tokenClientWithMetrics) Delegate(ctx context.Context, owner, delegatee string) error {
	type zero struct{}
	_, err := runTokenClientMethodWithMetrics("Delegate", func() (zero, error) {
		return zero{}, t.token.Delegate(ctx, owner, delegatee)
	})
	return err
}

func (t *tokenClientWithMetrics) Transfer(ctx context.Context, from, to string, amount sdkmath.Uint) error {
	type zero struct{}
	_, err := runTokenClientMethodWithMetrics("Transfer", func() (zero, error) {
		return zero{}, t.token.Transfer(ctx, from, to, amount)
	})
	return err
}

func runTokenClientMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordTokenClientLatency(duration, method, err != nil)
	return v, err
}
