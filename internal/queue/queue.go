package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/flexvote-io/flexvote/internal/config"
	"github.com/flexvote-io/flexvote/internal/observability/metrics"
)

// MessageHandler processes one queue message body. A nil return acks the
// message, any error nacks it back onto the queue for redelivery.
type MessageHandler func(ctx context.Context, body []byte) error

type QueueManager struct {
	cfg    *config.QueueConfig
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewQueueManager(cfg *config.QueueConfig, logger *zap.Logger) (*QueueManager, error) {
	qm := &QueueManager{
		cfg:    cfg,
		logger: logger.With(zap.String("queue", cfg.QueueName)),
		quit:   make(chan struct{}),
	}

	if err := qm.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	return qm, nil
}

// connect dials the broker and declares the durable event queue, retrying
// transient failures with a fixed delay.
func (qm *QueueManager) connect() error {
	return retry.Do(
		func() error {
			conn, err := amqp.Dial(qm.cfg.URL)
			if err != nil {
				return err
			}

			channel, err := conn.Channel()
			if err != nil {
				conn.Close()
				return err
			}

			if err := channel.Qos(qm.cfg.PrefetchCount, 0, false); err != nil {
				conn.Close()
				return err
			}

			if _, err := channel.QueueDeclare(
				qm.cfg.QueueName,
				true,  // durable
				false, // autoDelete
				false, // exclusive
				false, // noWait
				nil,
			); err != nil {
				conn.Close()
				return err
			}

			qm.mu.Lock()
			qm.conn = conn
			qm.channel = channel
			qm.mu.Unlock()

			return nil
		},
		retry.Attempts(qm.cfg.MaxReconnectTimes),
		retry.Delay(qm.cfg.ReconnectInterval),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			qm.logger.Warn("failed to connect to queue, retrying",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// Start consumes messages until ctx is cancelled or Shutdown is called. On
// channel loss it reconnects and resumes consuming.
func (qm *QueueManager) Start(ctx context.Context, handler MessageHandler) error {
	deliveries, err := qm.consume()
	if err != nil {
		return err
	}

	qm.wg.Add(1)
	go func() {
		defer qm.wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			case <-qm.quit:
				return
			case delivery, ok := <-deliveries:
				if !ok {
					// channel closed by the broker, try to re-establish
					qm.logger.Warn("delivery channel closed, reconnecting")
					if err := qm.connect(); err != nil {
						qm.logger.Error("failed to reconnect to queue", zap.Error(err))
						return
					}
					deliveries, err = qm.consume()
					if err != nil {
						qm.logger.Error("failed to resume consuming", zap.Error(err))
						return
					}
					continue
				}
				qm.handleDelivery(ctx, handler, delivery)
			}
		}
	}()

	return nil
}

func (qm *QueueManager) consume() (<-chan amqp.Delivery, error) {
	qm.mu.Lock()
	channel := qm.channel
	qm.mu.Unlock()

	return channel.Consume(
		qm.cfg.QueueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
}

func (qm *QueueManager) handleDelivery(ctx context.Context, handler MessageHandler, delivery amqp.Delivery) {
	if err := handler(ctx, delivery.Body); err != nil {
		metrics.RecordQueueReceiveError()
		qm.logger.Error("failed to process message, requeueing",
			zap.String("messageId", delivery.MessageId),
			zap.Error(err),
		)
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			qm.logger.Error("failed to nack message", zap.Error(nackErr))
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		qm.logger.Error("failed to ack message", zap.Error(err))
	}
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	qm.logger.Info("shutting down queue manager")
	close(qm.quit)

	qm.mu.Lock()
	if qm.channel != nil {
		qm.channel.Close()
	}
	if qm.conn != nil {
		qm.conn.Close()
	}
	qm.mu.Unlock()

	qm.wg.Wait()
}
