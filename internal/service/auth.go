package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

// AuthService turns a verified GitHub identity into a member record and a
// session token. It does not touch cookies or requests.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	pages  Invalidator
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, pages Invalidator, logger *slog.Logger) *AuthService {
	if pages == nil {
		pages = NopInvalidator{}
	}
	return &AuthService{users: users, tokens: tokens, pages: pages, logger: logger}
}

// AuthResult bundles the member and the token the handler puts in the
// cookie.
type AuthResult struct {
	User  model.User
	Token string
}

// GitHubUID is the member id for a GitHub account.
func GitHubUID(githubID int64) string {
	return "gh" + strconv.FormatInt(githubID, 10)
}

// LoginOrRegisterGitHub upserts the member on every login so name, avatar
// and email follow the GitHub profile. An empty GitHub bio keeps the stored
// one. The member's name and avatar appear next to every post and comment
// they wrote, so a change drops all cached pages.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}
	rec := &model.UserRecord{
		UID:         GitHubUID(ghUser.ID),
		DisplayName: name,
		PhotoURL:    ghUser.AvatarURL,
		Bio:         ghUser.Bio,
		Email:       ghUser.Email,
	}

	prev, prevErr := s.users.GetUserByID(ctx, rec.UID)

	if err := s.users.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	switch {
	case prevErr == nil:
		if profileChanged(prev, rec) {
			s.pages.InvalidateAll()
		}
	case apperror.KindOf(prevErr) != apperror.KindNotFound:
		s.logger.Warn("could not read member before login, dropping cached pages",
			slog.String("userID", rec.UID),
			slog.String("error", prevErr.Error()),
		)
		s.pages.InvalidateAll()
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", rec.UID),
		slog.String("login", ghUser.Login),
	)

	token, err := s.tokens.Generate(rec.UID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", rec.UID, err)
	}

	return &AuthResult{User: rec.View(), Token: token}, nil
}

// profileChanged reports whether a refresh changes anything pages render.
// An empty incoming bio keeps the stored one.
func profileChanged(prev, next *model.UserRecord) bool {
	if prev.DisplayName != next.DisplayName || prev.PhotoURL != next.PhotoURL {
		return true
	}
	return next.Bio != "" && next.Bio != prev.Bio
}

// TokenTTL is the cookie lifetime matching issued tokens.
func (s *AuthService) TokenTTL() int {
	return int(s.tokens.TTL().Seconds())
}
