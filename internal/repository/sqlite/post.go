package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

const postColumns = `id, user_id, caption, category, image_url, likes, comments, created_at`

// Create inserts a new post with an empty comment list.
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

	comments, err := json.Marshal(post.Comments)
	if err != nil {
		return fmt.Errorf("sqlite: encoding comments for post %s: %w", post.ID, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Caption,
		string(post.Category),
		post.ImageURL,
		post.Likes,
		string(comments),
		post.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post with its comments.
func (db *DB) GetByID(ctx context.Context, id string) (*model.PostRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return post, nil
}

// List returns posts newest first. Posts without a timestamp come last.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.PostRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.Category != "" && opts.Category != model.CategoryAll {
		where = append(where, "lower(category) = lower(?)")
		args = append(args, string(opts.Category))
	}
	if opts.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, opts.UserID)
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at IS NULL, created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.PostRecord{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post rows: %w", err)
	}

	return posts, nil
}

// IncrementLikes adds one like in a single UPDATE ... RETURNING statement.
func (db *DB) IncrementLikes(ctx context.Context, id string) (int64, error) {
	var likes int64
	err := db.conn.QueryRowContext(ctx,
		`UPDATE posts SET likes = likes + 1 WHERE id = ? RETURNING likes`, id,
	).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NotFound("post", id)
		}
		return 0, fmt.Errorf("sqlite: liking post %s: %w", id, err)
	}
	return likes, nil
}

// AppendComment pushes the comment onto the post's JSON array in place.
func (db *DB) AppendComment(ctx context.Context, postID string, comment *model.CommentRecord) error {
	comment.CreatedAt = time.Now().UTC()

	encoded, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("sqlite: encoding comment %s: %w", comment.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET comments = json_insert(comments, '$[#]', json(?)) WHERE id = ?`,
		string(encoded), postID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending comment to post %s: %w", postID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", postID)
	}

	return nil
}

// Delete removes a post, and with it every embedded comment.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*model.PostRecord, error) {
	var (
		post      model.PostRecord
		category  string
		comments  string
		createdAt sql.NullInt64
	)
	err := s.Scan(
		&post.ID,
		&post.UserID,
		&post.Caption,
		&category,
		&post.ImageURL,
		&post.Likes,
		&comments,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	post.Category = model.Category(category)
	if createdAt.Valid {
		post.CreatedAt = time.Unix(0, createdAt.Int64).UTC()
	}

	post.Comments = []model.CommentRecord{}
	if comments != "" {
		if err := json.Unmarshal([]byte(comments), &post.Comments); err != nil {
			return nil, fmt.Errorf("decoding comments of post %s: %w", post.ID, err)
		}
	}

	return &post, nil
}
