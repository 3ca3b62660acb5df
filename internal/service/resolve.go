package service

import (
	"context"
	"log/slog"

	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

// resolve turns stored posts into views. Every owner and comment author is
// fetched with a single GetUsersByIDs call; ids without a record, or all ids
// when the lookup fails, resolve to the Unknown User placeholder.
func (s *PostService) resolve(ctx context.Context, records []model.PostRecord) []model.Post {
	var ids []string
	for _, r := range records {
		ids = append(ids, r.UserIDs()...)
	}
	users := s.lookupUsers(ctx, ids)

	posts := make([]model.Post, 0, len(records))
	for _, r := range records {
		posts = append(posts, toPostView(r, users))
	}
	return posts
}

func (s *PostService) resolveComment(ctx context.Context, rec model.CommentRecord) model.Comment {
	return toCommentView(rec, s.lookupUsers(ctx, []string{rec.UserID}))
}

func (s *PostService) lookupUsers(ctx context.Context, ids []string) map[string]model.UserRecord {
	unique := repository.UniqueIDs(ids)
	if len(unique) == 0 {
		return nil
	}

	users, err := s.users.GetUsersByIDs(ctx, unique)
	if err != nil {
		s.logger.Warn("user lookup failed, showing placeholders",
			slog.Int("ids", len(unique)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return users
}

func userView(users map[string]model.UserRecord, id string) model.User {
	if u, ok := users[id]; ok {
		return u.View()
	}
	return model.UnknownUser()
}

func toPostView(r model.PostRecord, users map[string]model.UserRecord) model.Post {
	comments := make([]model.Comment, 0, len(r.Comments))
	for _, c := range r.Comments {
		comments = append(comments, toCommentView(c, users))
	}
	return model.Post{
		ID:        r.ID,
		User:      userView(users, r.UserID),
		Caption:   r.Caption,
		Category:  r.Category,
		ImageURL:  r.ImageURL,
		Likes:     r.Likes,
		Comments:  comments,
		CreatedAt: model.NewTimestamp(r.CreatedAt),
	}
}

func toCommentView(c model.CommentRecord, users map[string]model.UserRecord) model.Comment {
	return model.Comment{
		ID:        c.ID,
		User:      userView(users, c.UserID),
		Text:      c.Text,
		CreatedAt: model.NewTimestamp(c.CreatedAt),
	}
}
