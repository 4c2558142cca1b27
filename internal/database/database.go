// Package database owns the MongoDB connection. The handle is constructed
// once at startup, passed down explicitly, and closed on shutdown; there is
// no import-time client state.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/postcraft/core/internal/config"
	"github.com/postcraft/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database bundles the Mongo client, the application database and the GridFS
// bucket holding content blobs.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	bucket *gridfs.Bucket
}

// Connect opens the Mongo connection, verifies it and ensures indexes.
func Connect(ctx context.Context, cfg config.MongoOptions) (*Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("content"))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}

	d := &Database{client: client, db: db, bucket: bucket}
	if err := d.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return d, nil
}

// Collection returns a handle to a named collection.
func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Bucket returns the GridFS bucket for content blobs.
func (d *Database) Bucket() *gridfs.Bucket { return d.bucket }

// Ping verifies connectivity, for health checks.
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Close disconnects the client. Called once at shutdown.
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *Database) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		models.UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		models.PromoCodeCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		models.ContentCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "uploaded_at", Value: -1}}},
		},
		models.PostCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "attributed_month", Value: 1}}},
		},
		models.PaymentCollection: {
			{Keys: bson.D{{Key: "paid_at", Value: 1}}},
		},
		models.SocialConnectionCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "platform", Value: 1}}},
		},
		models.SubscriptionCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	for coll, indexes := range specs {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("collection %s: %w", coll, err)
		}
	}
	return nil
}
