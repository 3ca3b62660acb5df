package repository

import (
	"sort"

	"github.com/sakif/bloom/internal/model"
)

// SortNewestFirst orders posts by CreatedAt descending. Posts without a
// timestamp sort last; ties fall back to id descending (xids grow over time).
func SortNewestFirst(posts []model.PostRecord) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].CreatedAt, posts[j].CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return posts[i].ID > posts[j].ID
	})
}

// Filter keeps the posts opts selects and applies its limit.
func Filter(posts []model.PostRecord, opts ListOptions) []model.PostRecord {
	out := posts[:0]
	for _, p := range posts {
		if !opts.Category.Matches(p.Category) {
			continue
		}
		if opts.UserID != "" && p.UserID != opts.UserID {
			continue
		}
		out = append(out, p)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// UniqueIDs returns ids with duplicates and empty strings removed, keeping
// first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
