package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/flexvote-io/flexvote/internal/db/model"
	"github.com/flexvote-io/flexvote/internal/observability/metrics"
	"github.com/flexvote-io/flexvote/internal/pool"
	"github.com/flexvote-io/flexvote/internal/utils/poller"
)

// StartCastPoller starts the poller that periodically forwards expressed
// votes to the governor for every active proposal.
func (s *Service) StartCastPoller(ctx context.Context) {
	castPoller := poller.NewPoller(
		s.cfg.Poller.CastPollingInterval,
		metrics.RecordPollerDuration("cast", s.castExpressedVotes),
	)
	go castPoller.Start(ctx)
}

// castExpressedVotes walks the active proposals and casts the weight
// expressed since the previous poll. Casting is incremental: the pool only
// forwards the delta, so repeated polls never double count.
func (s *Service) castExpressedVotes(ctx context.Context) error {
	proposalIDs := s.gov.ActiveProposals(s.cfg.Poller.ActiveProposalsLimit)
	metrics.RecordActiveProposalsCount(len(proposalIDs))

	for _, proposalID := range proposalIDs {
		delta, err := s.pool.CastVote(ctx, proposalID)
		if err != nil {
			if errors.Is(err, pool.ErrNoVotesExpressed) {
				continue
			}
			metrics.IncCastVoteFailures()
			log.Ctx(ctx).Error().Err(err).
				Uint64("proposal_id", proposalID).
				Msg("Failed to cast expressed votes")
			continue
		}

		_, cast := s.pool.ProposalVotes(proposalID)
		progress := &model.CastProgressDocument{
			ProposalID:   proposalID,
			AgainstVotes: cast.AgainstVotes.String(),
			ForVotes:     cast.ForVotes.String(),
			AbstainVotes: cast.AbstainVotes.String(),
		}
		if err := s.db.UpsertCastProgress(ctx, progress); err != nil {
			return fmt.Errorf("failed to persist cast progress for proposal %d: %w", proposalID, err)
		}

		log.Ctx(ctx).Info().
			Uint64("proposal_id", proposalID).
			Str("delta", delta.Sum().String()).
			Str("total_cast", cast.Sum().String()).
			Msg("Forwarded expressed votes to governor")
	}

	return nil
}
