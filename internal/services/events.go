package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/flexvote-io/flexvote/internal/db"
	"github.com/flexvote-io/flexvote/internal/db/model"
	"github.com/flexvote-io/flexvote/internal/observability/metrics"
	"github.com/flexvote-io/flexvote/internal/types"
)

const eventProcessingTimeout = 30 * time.Second

// PoolEvent is the message format delivered on the pool event queue. The
// same shape is persisted to the event log, so a replayed log entry goes
// through the exact code path a live queue message does.
type PoolEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	Height     uint64 `json:"height"`
	Seq        uint64 `json:"seq"`
	User       string `json:"user,omitempty"`
	Delegatee  string `json:"delegatee,omitempty"`
	ProposalID uint64 `json:"proposal_id,omitempty"`
	Support    uint8  `json:"support,omitempty"`
	// Amount is a decimal string to keep full uint128 precision in transit.
	Amount   string `json:"amount,omitempty"`
	Snapshot uint64 `json:"snapshot,omitempty"`
	Deadline uint64 `json:"deadline,omitempty"`
}

func (e *PoolEvent) amount() (sdkmath.Uint, error) {
	if e.Amount == "" {
		return sdkmath.ZeroUint(), nil
	}
	amount, err := sdkmath.ParseUint(e.Amount)
	if err != nil {
		return sdkmath.ZeroUint(), fmt.Errorf("invalid amount %q in %s event: %w", e.Amount, e.Type, err)
	}
	return amount, nil
}

func (e *PoolEvent) document() *model.PoolEventDocument {
	return &model.PoolEventDocument{
		ID:         e.EventID,
		Type:       e.Type,
		Height:     e.Height,
		Seq:        e.Seq,
		User:       e.User,
		Delegatee:  e.Delegatee,
		ProposalID: e.ProposalID,
		Support:    e.Support,
		Amount:     e.Amount,
		Snapshot:   e.Snapshot,
		Deadline:   e.Deadline,
	}
}

func eventFromDocument(doc *model.PoolEventDocument) PoolEvent {
	return PoolEvent{
		EventID:    doc.ID,
		Type:       doc.Type,
		Height:     doc.Height,
		Seq:        doc.Seq,
		User:       doc.User,
		Delegatee:  doc.Delegatee,
		ProposalID: doc.ProposalID,
		Support:    doc.Support,
		Amount:     doc.Amount,
		Snapshot:   doc.Snapshot,
		Deadline:   doc.Deadline,
	}
}

// handleQueueMessage is the queue consumer entry point. A nil return acks
// the message. Domain rejections are terminal: the event is malformed or
// violates an invariant, and redelivery cannot fix it, so those are acked
// after logging. Only infrastructure errors propagate and trigger a nack.
func (s *Service) handleQueueMessage(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessingTimeout)
	defer cancel()

	var event PoolEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Discarding undecodable queue message")
		return nil
	}
	if event.EventID == "" {
		log.Ctx(ctx).Warn().Str("type", event.Type).Msg("Discarding queue message without event id")
		return nil
	}

	if err := s.db.SavePoolEvent(ctx, event.document()); err != nil {
		if db.IsDuplicateKeyError(err) {
			log.Ctx(ctx).Debug().
				Str("eventId", event.EventID).
				Msg("Skipping already processed event")
			return nil
		}
		return fmt.Errorf("failed to persist pool event: %w", err)
	}

	if err := s.processEvent(ctx, event); err != nil {
		if err.ErrorCode == types.InternalServiceError {
			return err
		}
		log.Ctx(ctx).Warn().Err(err).
			Str("eventId", event.EventID).
			Str("type", event.Type).
			Msg("Rejected pool event")
		return nil
	}

	if err := s.db.UpdateLastProcessedHeight(ctx, event.Height); err != nil {
		return fmt.Errorf("failed to update last processed height: %w", err)
	}

	return nil
}

// processEvent dispatches one event to its handler and records processing
// duration per event type.
func (s *Service) processEvent(ctx context.Context, event PoolEvent) *types.Error {
	startTime := time.Now()

	var err *types.Error
	switch types.EventTypes(event.Type) {
	case types.EventDeposit:
		log.Ctx(ctx).Debug().Msg("Processing deposit event")
		err = s.processDepositEvent(ctx, event)
	case types.EventWithdraw:
		log.Ctx(ctx).Debug().Msg("Processing withdraw event")
		err = s.processWithdrawEvent(ctx, event)
	case types.EventExpressVote:
		log.Ctx(ctx).Debug().Msg("Processing express vote event")
		err = s.processExpressVoteEvent(ctx, event)
	case types.EventDelegate:
		log.Ctx(ctx).Debug().Msg("Processing delegate event")
		err = s.processDelegateEvent(ctx, event)
	case types.EventHeightAdvanced:
		log.Ctx(ctx).Debug().Msg("Processing height advanced event")
		err = s.processHeightAdvancedEvent(ctx, event)
	case types.EventProposalCreated:
		log.Ctx(ctx).Debug().Msg("Processing proposal created event")
		err = s.processProposalCreatedEvent(ctx, event)
	default:
		err = types.NewValidationFailedError(
			fmt.Errorf("unknown pool event type: %s", event.Type),
		)
	}

	metrics.RecordPoolEventProcessingDuration(time.Since(startTime), event.Type, 0, err != nil)

	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to process event")
		return err
	}

	return nil
}
