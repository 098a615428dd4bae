package services

import (
	"context"

	"github.com/flexvote-io/flexvote/internal/clients/govclient"
	"github.com/flexvote-io/flexvote/internal/clients/tokenclient"
	"github.com/flexvote-io/flexvote/internal/config"
	"github.com/flexvote-io/flexvote/internal/db"
	"github.com/flexvote-io/flexvote/internal/pool"
	"github.com/flexvote-io/flexvote/internal/queue"
)

type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	ledger       *tokenclient.MemoryLedger
	gov          *govclient.Governor
	pool         *pool.Pool
	queueManager *queue.QueueManager
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	ledger *tokenclient.MemoryLedger,
	gov *govclient.Governor,
	pool *pool.Pool,
	qm *queue.QueueManager,
) *Service {
	return &Service{
		cfg:          cfg,
		db:           db,
		ledger:       ledger,
		gov:          gov,
		pool:         pool,
		queueManager: qm,
	}
}

// StartPoolSync replays the durable event log to rebuild in-memory state,
// then starts the cast poller and the queue consumer. It returns once the
// consumer is running; processing continues in the background until ctx is
// cancelled.
func (s *Service) StartPoolSync(ctx context.Context) error {
	if err := s.bootstrapPool(ctx); err != nil {
		return err
	}
	s.StartCastPoller(ctx)
	return s.queueManager.Start(ctx, s.handleQueueMessage)
}
