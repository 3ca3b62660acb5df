// Package repository declares the storage contracts the services depend on.
// Each backend (sqlite, badger, mongo) implements all of them on one type.
package repository

import (
	"context"

	"github.com/sakif/bloom/internal/model"
)

// ListOptions filters a post listing. Zero values mean "no filter".
type ListOptions struct {
	Category model.Category // CategoryAll and "" match every post
	UserID   string
	Limit    int
}

// PostRepository stores posts with their embedded comments.
//
// Every mutating method is a single atomic store operation:
//   - IncrementLikes never loses a concurrent increment
//   - AppendComment never overwrites a concurrent append
type PostRepository interface {
	// Create assigns ID (when empty) and CreatedAt, and stores the post.
	Create(ctx context.Context, post *model.PostRecord) error
	GetByID(ctx context.Context, id string) (*model.PostRecord, error)
	// List returns posts newest first.
	List(ctx context.Context, opts ListOptions) ([]model.PostRecord, error)
	// IncrementLikes adds one like and returns the new count.
	IncrementLikes(ctx context.Context, id string) (int64, error)
	// AppendComment sets the comment's CreatedAt and appends it.
	AppendComment(ctx context.Context, postID string, comment *model.CommentRecord) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	// Upsert creates the record or refreshes its profile fields, keeping
	// CreatedAt and a non-empty Bio.
	Upsert(ctx context.Context, user *model.UserRecord) error
	GetUserByID(ctx context.Context, id string) (*model.UserRecord, error)
	// GetUsersByIDs resolves ids in one round trip. Ids with no record are
	// absent from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]model.UserRecord, error)
}

type FeaturedRepository interface {
	ListFeatured(ctx context.Context) ([]model.FeaturedPost, error)
	AddFeatured(ctx context.Context, post *model.FeaturedPost) error
}

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, fb *model.Feedback) error
}

// Store is a full backend.
type Store interface {
	PostRepository
	UserRepository
	FeaturedRepository
	FeedbackRepository
	Close() error
}
