package db

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flexvote-io/flexvote/internal/db/model"
)

func (db *Database) UpsertCastProgress(ctx context.Context, progress *model.CastProgressDocument) error {
	filter := bson.M{"_id": progress.ProposalID}
	update := bson.M{"$set": bson.M{
		"against_votes": progress.AgainstVotes,
		"for_votes":     progress.ForVotes,
		"abstain_votes": progress.AbstainVotes,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.CastProgressCollection).
		UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetCastProgress(ctx context.Context, proposalID uint64) (*model.CastProgressDocument, error) {
	filter := bson.M{"_id": proposalID}
	res := db.collection(model.CastProgressCollection).FindOne(ctx, filter)

	var progress model.CastProgressDocument
	err := res.Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     strconv.FormatUint(proposalID, 10),
				Message: "cast progress not found by proposal id",
			}
		}
		return nil, err
	}

	return &progress, nil
}
