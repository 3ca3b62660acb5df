package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

// Create inserts a new post document.
func (db *DB) Create(ctx context.Context, post *model.PostRecord) error {
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Comments == nil {
		post.Comments = []model.CommentRecord{}
	}

	if _, err := db.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("mongo: creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by id.
func (db *DB) GetByID(ctx context.Context, id string) (*model.PostRecord, error) {
	var post model.PostRecord
	err := db.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("mongo: getting post %s: %w", id, err)
	}
	normalize(&post)
	return &post, nil
}

// List returns posts sorted by createdAt descending.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.PostRecord, error) {
	filter := bson.M{}
	if opts.Category != "" && opts.Category != model.CategoryAll {
		filter["category"] = primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(string(opts.Category)) + "$",
			Options: "i",
		}
	}
	if opts.UserID != "" {
		filter["userId"] = opts.UserID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}

	cursor, err := db.posts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []model.PostRecord{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("mongo: decoding posts: %w", err)
	}
	for i := range posts {
		normalize(&posts[i])
	}
	return posts, nil
}

// IncrementLikes applies $inc and returns the updated count.
func (db *DB) IncrementLikes(ctx context.Context, id string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var updated struct {
		Likes int64 `bson:"likes"`
	}
	err := db.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperror.NotFound("post", id)
		}
		return 0, fmt.Errorf("mongo: liking post %s: %w", id, err)
	}
	return updated.Likes, nil
}

// AppendComment applies $push to the post's comments array.
func (db *DB) AppendComment(ctx context.Context, postID string, comment *model.CommentRecord) error {
	comment.CreatedAt = time.Now().UTC()

	result, err := db.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return fmt.Errorf("mongo: appending comment to post %s: %w", postID, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("post", postID)
	}
	return nil
}

// Delete removes the post document with its embedded comments.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo: deleting post %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

func normalize(post *model.PostRecord) {
	if post.Comments == nil {
		post.Comments = []model.CommentRecord{}
	}
}
