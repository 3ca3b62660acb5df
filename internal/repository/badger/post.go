package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

func postKey(id string) string { return postKeyPrefix + id }

// Create stores a new post.
func (d *DB) Create(ctx context.Context, post *model.PostRecord) error {
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Comments == nil {
		post.Comments = []model.CommentRecord{}
	}

	err := d.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, postKey(post.ID), post)
	})
	if err != nil {
		return fmt.Errorf("badger: creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by id.
func (d *DB) GetByID(ctx context.Context, id string) (*model.PostRecord, error) {
	var post model.PostRecord
	err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, postKey(id), &post)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("badger: getting post %s: %w", id, err)
	}
	normalize(&post)
	return &post, nil
}

// List scans every post and orders them newest first.
func (d *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.PostRecord, error) {
	posts := []model.PostRecord{}
	err := d.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, postKeyPrefix, func(val []byte) error {
			var post model.PostRecord
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			normalize(&post)
			posts = append(posts, post)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("badger: listing posts: %w", err)
	}

	repository.SortNewestFirst(posts)
	return repository.Filter(posts, opts), nil
}

// IncrementLikes adds one like inside a conflict-checked transaction.
func (d *DB) IncrementLikes(ctx context.Context, id string) (int64, error) {
	var likes int64
	err := d.mutatePost(ctx, id, func(post *model.PostRecord) {
		post.Likes++
		likes = post.Likes
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}

// AppendComment appends the comment inside a conflict-checked transaction.
func (d *DB) AppendComment(ctx context.Context, postID string, comment *model.CommentRecord) error {
	return d.mutatePost(ctx, postID, func(post *model.PostRecord) {
		comment.CreatedAt = time.Now().UTC()
		post.Comments = append(post.Comments, *comment)
	})
}

// Delete removes a post and its embedded comments.
func (d *DB) Delete(ctx context.Context, id string) error {
	err := d.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(postKey(id))); err != nil {
			return err
		}
		return txn.Delete([]byte(postKey(id)))
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperror.NotFound("post", id)
		}
		return fmt.Errorf("badger: deleting post %s: %w", id, err)
	}
	return nil
}

// mutatePost loads a post, applies fn and writes it back in one transaction.
// fn may run more than once when the transaction is retried.
func (d *DB) mutatePost(ctx context.Context, id string, fn func(post *model.PostRecord)) error {
	err := d.update(ctx, func(txn *badger.Txn) error {
		var post model.PostRecord
		if err := getJSON(txn, postKey(id), &post); err != nil {
			return err
		}
		normalize(&post)
		fn(&post)
		return setJSON(txn, postKey(id), &post)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperror.NotFound("post", id)
		}
		return fmt.Errorf("badger: updating post %s: %w", id, err)
	}
	return nil
}

func normalize(post *model.PostRecord) {
	if post.Comments == nil {
		post.Comments = []model.CommentRecord{}
	}
}
