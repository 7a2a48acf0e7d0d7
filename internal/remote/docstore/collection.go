package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the subset of a MongoDB collection the adapter uses.
type Collection interface {
	FindAll(ctx context.Context, filter bson.M) ([]bson.M, error)
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// MongoCollection adapts *mongo.Collection to Collection.
type MongoCollection struct {
	*mongo.Collection
}

func (c *MongoCollection) FindAll(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cur, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to perform Find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

func (c *MongoCollection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	result, err := c.Collection.BulkWrite(ctx, models, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform BulkWrite: %w", err)
	}

	return result, nil
}

// Connect dials uri and returns the named collection in database, with the
// (owner_id, id) unique index in place.
func Connect(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*mongo.Client, *MongoCollection, error) {
	logger.DebugContext(ctx, "connecting to MongoDB", "database", database, "collection", collection)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to create owner index: %w", err)
	}

	logger.InfoContext(ctx, "connected to MongoDB", "database", database)

	return client, &MongoCollection{coll}, nil
}
