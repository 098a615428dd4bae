package db

import (
	"context"

	"github.com/flexvote-io/flexvote/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	SavePoolEvent(ctx context.Context, event *model.PoolEventDocument) error
	GetPoolEventsFromHeight(ctx context.Context, fromHeight uint64) ([]*model.PoolEventDocument, error)
	SaveExpression(ctx context.Context, expression *model.ExpressionDocument) error
	GetExpressionsByProposal(ctx context.Context, proposalID uint64) ([]*model.ExpressionDocument, error)
	UpsertCastProgress(ctx context.Context, progress *model.CastProgressDocument) error
	GetCastProgress(ctx context.Context, proposalID uint64) (*model.CastProgressDocument, error)
	GetLastProcessedHeight(ctx context.Context) (uint64, error)
	UpdateLastProcessedHeight(ctx context.Context, height uint64) error
}
