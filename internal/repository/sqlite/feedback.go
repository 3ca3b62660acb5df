package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/model"
)

// CreateFeedback stores a feedback message.
func (db *DB) CreateFeedback(ctx context.Context, fb *model.Feedback) error {
	if fb.ID == "" {
		fb.ID = xid.New().String()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO feedback (id, user_id, text, created_at) VALUES (?, ?, ?, ?)`,
		fb.ID, fb.UserID, fb.Text, fb.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating feedback: %w", err)
	}
	return nil
}
