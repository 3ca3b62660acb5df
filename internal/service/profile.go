package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

// Profile is a member with the projects they posted.
type Profile struct {
	User  model.User   `json:"user"`
	Posts []model.Post `json:"posts"`
}

type ProfileService struct {
	users  repository.UserRepository
	posts  *PostService
	logger *slog.Logger
}

func NewProfileService(users repository.UserRepository, posts *PostService, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, posts: posts, logger: logger}
}

// GetProfile returns NotFound when there is no user record for userID. The
// member's posts fall back to an empty list when they cannot be fetched.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "User ID is required.")
	}

	rec, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Failed to fetch user.")
	}

	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		posts = []model.Post{}
	}

	return &Profile{User: rec.View(), Posts: posts}, nil
}

// CurrentUser returns the signed-in member's own record.
func (s *ProfileService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	rec, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Failed to fetch user.")
	}
	u := rec.View()
	return &u, nil
}
