// Package mongo implements the repository interfaces on MongoDB.
//
// Collections:
//   - users    { _id: uid, displayName, photoURL, bio, email, createdAt, updatedAt }
//   - posts    { _id, userId, caption, category, imageUrl, likes, comments[], createdAt }
//   - featured { _id, link }
//   - feedback { _id, userId, text, createdAt }
//
// Likes use $inc and comments use $push, both single-document atomic updates.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/bloom/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB holds the collections of one Mongo database.
type DB struct {
	client   *mongo.Client
	users    *mongo.Collection
	posts    *mongo.Collection
	featured *mongo.Collection
	feedback *mongo.Collection
}

// New connects to uri, pings the server and selects database.
func New(ctx context.Context, uri, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging server: %w", err)
	}

	db := NewFromDatabase(client.Database(database))
	db.client = client
	return db, nil
}

// NewFromDatabase wraps an already connected database. Close is a no-op for
// a DB built this way; the caller owns the client.
func NewFromDatabase(database *mongo.Database) *DB {
	return &DB{
		users:    database.Collection("users"),
		posts:    database.Collection("posts"),
		featured: database.Collection("featured"),
		feedback: database.Collection("feedback"),
	}
}

// Close disconnects the client opened by New.
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}
