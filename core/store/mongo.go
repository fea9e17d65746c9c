// Package store persists records into MongoDB, one document per page URL.
package store

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/threadpipe/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoSink upserts records keyed by url.
type MongoSink struct {
	client *mongo.Client
	pages  *mongo.Collection
	log    *zap.Logger
}

// NewMongoSink connects to uri and prepares the collection.
func NewMongoSink(ctx context.Context, uri, database, collection string, log *zap.Logger) (*MongoSink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := &MongoSink{
		client: cli,
		pages:  cli.Database(database).Collection(collection),
		log:    log,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoSink) ensureIndexes(ctx context.Context) error {
	_, err := s.pages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "content_type", Value: 1}}},
		{Keys: bson.D{{Key: "board", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}
	return nil
}

// Save replaces the stored document of every item, inserting new ones.
func (s *MongoSink) Save(ctx context.Context, items []core.ContentItem) error {
	models := upsertModels(items)
	if len(models) == 0 {
		return nil
	}
	res, err := s.pages.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("writing %d records: %w", len(models), err)
	}
	s.log.Info("saved records to mongo",
		zap.Int64("upserted", res.UpsertedCount),
		zap.Int64("modified", res.ModifiedCount))
	return nil
}

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func upsertModels(items []core.ContentItem) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(items))
	for _, it := range items {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "url", Value: it.URL}}).
			SetReplacement(it).
			SetUpsert(true))
	}
	return models
}
