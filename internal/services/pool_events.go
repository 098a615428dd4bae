package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/flexvote-io/flexvote/internal/db"
	"github.com/flexvote-io/flexvote/internal/db/model"
	"github.com/flexvote-io/flexvote/internal/observability/metrics"
	"github.com/flexvote-io/flexvote/internal/types"
	"github.com/flexvote-io/flexvote/pkg"
)

// processDepositEvent mints the deposited amount onto the in-process ledger
// and moves it into the pool. Tokens arriving from outside the system only
// become visible here, so mint-then-deposit keeps ledger supply equal to
// everything the pool has ever been told about.
func (s *Service) processDepositEvent(ctx context.Context, event PoolEvent) *types.Error {
	if err := pkg.ValidateAddress(event.User); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid user in deposit event: %w", err),
		)
	}
	amount, err := event.amount()
	if err != nil {
		return types.NewValidationFailedError(err)
	}

	if err := s.ledger.Mint(event.User, amount); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("failed to credit deposit on ledger: %w", err),
		)
	}
	if err := s.pool.Deposit(ctx, event.User, amount); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("failed to deposit into pool: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("user", event.User).
		Str("amount", amount.String()).
		Msg("Deposit processed")

	return nil
}

// processWithdrawEvent returns pooled tokens to the depositor and burns them
// off the ledger, mirroring their exit from the system.
func (s *Service) processWithdrawEvent(ctx context.Context, event PoolEvent) *types.Error {
	if err := pkg.ValidateAddress(event.User); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid user in withdraw event: %w", err),
		)
	}
	amount, err := event.amount()
	if err != nil {
		return types.NewValidationFailedError(err)
	}

	if err := s.pool.Withdraw(ctx, event.User, amount); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("failed to withdraw from pool: %w", err),
		)
	}
	if err := s.ledger.Burn(event.User, amount); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to burn withdrawn amount from ledger: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("user", event.User).
		Str("amount", amount.String()).
		Msg("Withdrawal processed")

	return nil
}

func (s *Service) processExpressVoteEvent(ctx context.Context, event PoolEvent) *types.Error {
	if err := pkg.ValidateAddress(event.User); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid voter in express vote event: %w", err),
		)
	}

	support := types.VoteSupport(event.Support)
	if err := s.pool.ExpressVote(ctx, event.ProposalID, event.User, support); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("failed to express vote: %w", err),
		)
	}

	snapshot, err := s.gov.ProposalSnapshot(ctx, event.ProposalID)
	if err != nil {
		return types.NewValidationFailedError(err)
	}
	weight := s.pool.GetPastVotingWeight(event.User, snapshot)

	doc := model.NewExpressionDocument(event.ProposalID, event.User, event.Support, weight.String(), event.Height)
	if dbErr := s.db.SaveExpression(ctx, doc); dbErr != nil {
		// a replayed log entry re-saves the same expression, which is fine
		if !db.IsDuplicateKeyError(dbErr) {
			return types.NewInternalServiceError(
				fmt.Errorf("failed to save expression: %w", dbErr),
			)
		}
	}

	log.Ctx(ctx).Info().
		Uint64("proposal_id", event.ProposalID).
		Str("voter", event.User).
		Str("support", support.String()).
		Str("weight", weight.String()).
		Msg("Vote expressed")

	return nil
}

func (s *Service) processDelegateEvent(ctx context.Context, event PoolEvent) *types.Error {
	if err := pkg.ValidateAddress(event.User); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid user in delegate event: %w", err),
		)
	}
	if err := pkg.ValidateAddress(event.Delegatee); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid delegatee in delegate event: %w", err),
		)
	}

	if err := s.pool.Delegate(event.User, event.Delegatee); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("failed to delegate pooled weight: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("user", event.User).
		Str("delegatee", event.Delegatee).
		Msg("Pooled weight delegated")

	return nil
}

func (s *Service) processHeightAdvancedEvent(ctx context.Context, event PoolEvent) *types.Error {
	if err := s.ledger.AdvanceToHeight(event.Height); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("failed to advance ledger height: %w", err),
		)
	}
	metrics.RecordTimeIndex(event.Height)

	log.Ctx(ctx).Debug().
		Uint64("height", event.Height).
		Msg("Ledger height advanced")

	return nil
}

func (s *Service) processProposalCreatedEvent(ctx context.Context, event PoolEvent) *types.Error {
	if event.Deadline < event.Snapshot {
		return types.NewValidationFailedError(
			fmt.Errorf("proposal %d deadline %d precedes snapshot %d",
				event.ProposalID, event.Deadline, event.Snapshot),
		)
	}

	s.gov.AddProposal(event.ProposalID, event.Snapshot, event.Deadline)

	log.Ctx(ctx).Info().
		Uint64("proposal_id", event.ProposalID).
		Uint64("snapshot", event.Snapshot).
		Uint64("deadline", event.Deadline).
		Msg("Proposal registered")

	return nil
}
