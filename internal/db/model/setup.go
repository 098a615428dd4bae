package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flexvote-io/flexvote/internal/config"
)

const setupTimeout = 30 * time.Second

var collectionIndexes = map[string][]mongo.IndexModel{
	PoolEventCollection: {
		{
			Keys: bson.D{{Key: "height", Value: 1}, {Key: "seq", Value: 1}},
		},
	},
	ExpressionCollection: {
		{
			Keys:    bson.D{{Key: "proposal_id", Value: 1}, {Key: "voter", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	},
	CastProgressCollection:        {},
	LastProcessedHeightCollection: {},
}

// Setup creates the collections and their indexes. It is idempotent and safe
// to run on every startup.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, indexes := range collectionIndexes {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		if len(indexes) == 0 {
			continue
		}
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on collection %s: %w", name, err)
		}
	}

	log.Info().Msg("Collections and indexes created successfully")
	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	err := database.CreateCollection(ctx, name)
	if err != nil {
		// collection may already exist from a previous run
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}
