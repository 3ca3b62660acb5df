package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/model"
)

// ListFeatured returns carousel entries in insertion order.
func (db *DB) ListFeatured(ctx context.Context) ([]model.FeaturedPost, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, link FROM featured ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing featured posts: %w", err)
	}
	defer rows.Close()

	featured := []model.FeaturedPost{}
	for rows.Next() {
		var f model.FeaturedPost
		if err := rows.Scan(&f.ID, &f.Link); err != nil {
			return nil, fmt.Errorf("sqlite: scanning featured row: %w", err)
		}
		featured = append(featured, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating featured rows: %w", err)
	}

	return featured, nil
}

// AddFeatured appends an entry to the carousel.
func (db *DB) AddFeatured(ctx context.Context, post *model.FeaturedPost) error {
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO featured (id, link, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM featured))`,
		post.ID, post.Link,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding featured post: %w", err)
	}
	return nil
}
