package db

import (
	"context"
	"time"

	"github.com/flexvote-io/flexvote/internal/db/model"
	"github.com/flexvote-io/flexvote/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SavePoolEvent(ctx context.Context, event *model.PoolEventDocument) error {
	return d.run("SavePoolEvent", func() error {
		return d.db.SavePoolEvent(ctx, event)
	})
}

func (d *DbWithMetrics) GetPoolEventsFromHeight(ctx context.Context, fromHeight uint64) (result []*model.PoolEventDocument, err error) {
	//nolint:errcheck
	d.run("GetPoolEventsFromHeight", func() error {
		result, err = d.db.GetPoolEventsFromHeight(ctx, fromHeight)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveExpression(ctx context.Context, expression *model.ExpressionDocument) error {
	return d.run("SaveExpression", func() error {
		return d.db.SaveExpression(ctx, expression)
	})
}

func (d *DbWithMetrics) GetExpressionsByProposal(ctx context.Context, proposalID uint64) (result []*model.ExpressionDocument, err error) {
	//nolint:errcheck
	d.run("GetExpressionsByProposal", func() error {
		result, err = d.db.GetExpressionsByProposal(ctx, proposalID)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertCastProgress(ctx context.Context, progress *model.CastProgressDocument) error {
	return d.run("UpsertCastProgress", func() error {
		return d.db.UpsertCastProgress(ctx, progress)
	})
}

func (d *DbWithMetrics) GetCastProgress(ctx context.Context, proposalID uint64) (result *model.CastProgressDocument, err error) {
	//nolint:errcheck
	d.run("GetCastProgress", func() error {
		result, err = d.db.GetCastProgress(ctx, proposalID)
		return err
	})
	return
}

func (d *DbWithMetrics) GetLastProcessedHeight(ctx context.Context) (result uint64, err error) {
	//nolint:errcheck
	d.run("GetLastProcessedHeight", func() error {
		result, err = d.db.GetLastProcessedHeight(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateLastProcessedHeight(ctx context.Context, height uint64) error {
	return d.run("UpdateLastProcessedHeight", func() error {
		return d.db.UpdateLastProcessedHeight(ctx, height)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
