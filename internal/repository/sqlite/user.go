package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
)

// Upsert inserts the user or refreshes the profile fields of an existing
// record. An empty incoming bio keeps the stored one.
func (db *DB) Upsert(ctx context.Context, user *model.UserRecord) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (uid, display_name, photo_url, bio, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
			display_name = excluded.display_name,
			photo_url    = excluded.photo_url,
			bio          = CASE WHEN excluded.bio = '' THEN users.bio ELSE excluded.bio END,
			email        = excluded.email,
			updated_at   = excluded.updated_at`,
		user.UID,
		user.DisplayName,
		user.PhotoURL,
		user.Bio,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.UID, err)
	}

	return nil
}

// GetUserByID retrieves a user by uid.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.UserRecord, error) {
	var u model.UserRecord

	err := db.conn.QueryRowContext(ctx,
		`SELECT uid, display_name, photo_url, bio, email, created_at, updated_at
		 FROM users WHERE uid = ?`,
		id,
	).Scan(
		&u.UID,
		&u.DisplayName,
		&u.PhotoURL,
		&u.Bio,
		&u.Email,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// GetUsersByIDs loads every listed user with a single IN (...) query.
func (db *DB) GetUsersByIDs(ctx context.Context, ids []string) (map[string]model.UserRecord, error) {
	out := make(map[string]model.UserRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT uid, display_name, photo_url, bio, email, created_at, updated_at
		 FROM users WHERE uid IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batch loading %d users: %w", len(ids), err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.UserRecord
		if err := rows.Scan(&u.UID, &u.DisplayName, &u.PhotoURL, &u.Bio, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		out[u.UID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return out, nil
}
