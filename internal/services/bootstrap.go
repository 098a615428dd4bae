package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flexvote-io/flexvote/internal/types"
)

const (
	bootstrapRetryInterval = 10 * time.Second
	bootstrapMaxRetries    = 10
)

// bootstrapPool rebuilds in-memory ledger, pool and governor state by
// replaying the persisted event log from the beginning. Replay runs through
// the same handlers as live queue messages, so the rebuilt state matches
// what processing the original stream produced. The queue consumer must not
// start before this returns.
func (s *Service) bootstrapPool(ctx context.Context) error {
	var err error
	for retries := 0; retries < bootstrapMaxRetries; retries++ {
		err = s.attemptBootstrap(ctx)
		if err == nil {
			log.Ctx(ctx).Info().Msg("Successfully bootstrapped pool state from event log")
			return nil
		}

		log.Ctx(ctx).Err(err).
			Msgf("Failed to bootstrap pool state, attempt %d/%d", retries+1, bootstrapMaxRetries)

		// linear backoff between attempts
		time.Sleep(bootstrapRetryInterval * time.Duration(retries+1))
	}
	return fmt.Errorf("failed to bootstrap pool state after %d attempts: %w", bootstrapMaxRetries, err)
}

func (s *Service) attemptBootstrap(ctx context.Context) error {
	docs, err := s.db.GetPoolEventsFromHeight(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load event log: %w", err)
	}

	var lastHeight uint64
	for _, doc := range docs {
		event := eventFromDocument(doc)
		if procErr := s.processEvent(ctx, event); procErr != nil {
			// infrastructure failures abort the replay so it can be retried,
			// domain rejections were already rejected on first processing
			if procErr.ErrorCode == types.InternalServiceError {
				return fmt.Errorf("failed to replay event %s: %w", event.EventID, procErr)
			}
			log.Ctx(ctx).Warn().Err(procErr).
				Str("eventId", event.EventID).
				Msg("Skipping rejected event during replay")
		}
		lastHeight = doc.Height
	}

	if len(docs) > 0 {
		if err := s.db.UpdateLastProcessedHeight(ctx, lastHeight); err != nil {
			return fmt.Errorf("failed to update last processed height: %w", err)
		}
	}

	log.Ctx(ctx).Debug().
		Int("events", len(docs)).
		Uint64("height", lastHeight).
		Msg("Replayed event log")

	return nil
}
