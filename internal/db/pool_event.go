package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flexvote-io/flexvote/internal/db/model"
)

// SavePoolEvent appends an event to the durable event log. Events carry an
// emitter-assigned unique id, so redelivered queue messages surface as
// DuplicateKeyError and can be acked without reprocessing.
func (db *Database) SavePoolEvent(ctx context.Context, event *model.PoolEventDocument) error {
	_, err := db.collection(model.PoolEventCollection).
		InsertOne(ctx, event)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     event.ID,
						Message: "pool event already exists",
					}
				}
			}
		}
		return err
	}

	return nil
}

// GetPoolEventsFromHeight returns logged events at or above fromHeight in
// replay order.
func (db *Database) GetPoolEventsFromHeight(ctx context.Context, fromHeight uint64) ([]*model.PoolEventDocument, error) {
	filter := bson.M{"height": bson.M{"$gte": fromHeight}}
	opts := options.Find().SetSort(bson.D{{Key: "height", Value: 1}, {Key: "seq", Value: 1}})

	cursor, err := db.collection(model.PoolEventCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*model.PoolEventDocument
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
