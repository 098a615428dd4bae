package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/flexvote-io/flexvote/internal/db/model"
)

func (db *Database) SaveExpression(ctx context.Context, expression *model.ExpressionDocument) error {
	_, err := db.collection(model.ExpressionCollection).
		InsertOne(ctx, expression)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     expression.ID,
						Message: "voter already expressed on this proposal",
					}
				}
			}
		}
		return err
	}

	return nil
}

func (db *Database) GetExpressionsByProposal(ctx context.Context, proposalID uint64) ([]*model.ExpressionDocument, error) {
	filter := bson.M{"proposal_id": proposalID}

	cursor, err := db.collection(model.ExpressionCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var expressions []*model.ExpressionDocument
	if err = cursor.All(ctx, &expressions); err != nil {
		return nil, err
	}

	return expressions, nil
}
