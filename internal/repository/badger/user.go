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
)

func userKey(uid string) string { return userKeyPrefix + uid }

// Upsert writes the user, keeping CreatedAt and a non-empty stored bio.
func (d *DB) Upsert(ctx context.Context, user *model.UserRecord) error {
	err := d.update(ctx, func(txn *badger.Txn) error {
		now := time.Now().UTC()

		var existing model.UserRecord
		err := getJSON(txn, userKey(user.UID), &existing)
		switch {
		case err == nil:
			user.CreatedAt = existing.CreatedAt
			if user.Bio == "" {
				user.Bio = existing.Bio
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			if user.CreatedAt.IsZero() {
				user.CreatedAt = now
			}
		default:
			return err
		}

		user.UpdatedAt = now
		return setJSON(txn, userKey(user.UID), user)
	})
	if err != nil {
		return fmt.Errorf("badger: upserting user %s: %w", user.UID, err)
	}
	return nil
}

// GetUserByID retrieves a user by uid.
func (d *DB) GetUserByID(ctx context.Context, id string) (*model.UserRecord, error) {
	var u model.UserRecord
	err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &u)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("badger: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUsersByIDs reads every listed user inside one read transaction.
func (d *DB) GetUsersByIDs(ctx context.Context, ids []string) (map[string]model.UserRecord, error) {
	out := make(map[string]model.UserRecord, len(ids))
	err := d.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var u model.UserRecord
			err := getJSON(txn, userKey(id), &u)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out[id] = u
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: batch loading %d users: %w", len(ids), err)
	}
	return out, nil
}

// ListFeatured returns carousel entries. Keys are xids, so prefix order is
// insertion order.
func (d *DB) ListFeatured(ctx context.Context) ([]model.FeaturedPost, error) {
	featured := []model.FeaturedPost{}
	err := d.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, featuredKeyPrefix, func(val []byte) error {
			var f model.FeaturedPost
			if err := unmarshalEntity(val, &f); err != nil {
				return err
			}
			featured = append(featured, f)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("badger: listing featured posts: %w", err)
	}
	return featured, nil
}

// AddFeatured appends an entry to the carousel.
func (d *DB) AddFeatured(ctx context.Context, post *model.FeaturedPost) error {
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	err := d.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, featuredKeyPrefix+post.ID, post)
	})
	if err != nil {
		return fmt.Errorf("badger: adding featured post: %w", err)
	}
	return nil
}

// CreateFeedback stores a feedback message.
func (d *DB) CreateFeedback(ctx context.Context, fb *model.Feedback) error {
	if fb.ID == "" {
		fb.ID = xid.New().String()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	err := d.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, feedbackKeyPrefix+fb.ID, fb)
	})
	if err != nil {
		return fmt.Errorf("badger: creating feedback: %w", err)
	}
	return nil
}
