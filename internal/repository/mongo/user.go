package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
)

// Upsert refreshes the profile fields, inserting the document on first
// sight. createdAt is only written on insert; an empty bio leaves the stored
// one alone.
func (db *DB) Upsert(ctx context.Context, user *model.UserRecord) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	set := bson.M{
		"displayName": user.DisplayName,
		"photoURL":    user.PhotoURL,
		"email":       user.Email,
		"updatedAt":   user.UpdatedAt,
	}
	setOnInsert := bson.M{"createdAt": user.CreatedAt}
	if user.Bio != "" {
		set["bio"] = user.Bio
	} else {
		setOnInsert["bio"] = ""
	}

	_, err := db.users.UpdateOne(ctx,
		bson.M{"_id": user.UID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: upserting user %s: %w", user.UID, err)
	}
	return nil
}

// GetUserByID retrieves a user by uid.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.UserRecord, error) {
	var u model.UserRecord
	err := db.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("mongo: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUsersByIDs loads every listed user with one $in query.
func (db *DB) GetUsersByIDs(ctx context.Context, ids []string) (map[string]model.UserRecord, error) {
	out := make(map[string]model.UserRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := db.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("mongo: batch loading %d users: %w", len(ids), err)
	}
	defer cursor.Close(ctx)

	var users []model.UserRecord
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo: decoding users: %w", err)
	}
	for _, u := range users {
		out[u.UID] = u
	}
	return out, nil
}

// ListFeatured returns carousel entries in insertion order.
func (db *DB) ListFeatured(ctx context.Context) ([]model.FeaturedPost, error) {
	cursor, err := db.featured.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: listing featured posts: %w", err)
	}
	defer cursor.Close(ctx)

	featured := []model.FeaturedPost{}
	if err := cursor.All(ctx, &featured); err != nil {
		return nil, fmt.Errorf("mongo: decoding featured posts: %w", err)
	}
	return featured, nil
}

// AddFeatured appends an entry to the carousel.
func (db *DB) AddFeatured(ctx context.Context, post *model.FeaturedPost) error {
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	if _, err := db.featured.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("mongo: adding featured post: %w", err)
	}
	return nil
}

// CreateFeedback stores a feedback message.
func (db *DB) CreateFeedback(ctx context.Context, fb *model.Feedback) error {
	if fb.ID == "" {
		fb.ID = xid.New().String()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	if _, err := db.feedback.InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("mongo: creating feedback: %w", err)
	}
	return nil
}
