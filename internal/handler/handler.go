// Package handler translates HTTP requests into service calls. JSON
// endpoints live under /api, server-rendered pages at the root and the
// GitHub sign-in flow under /auth.
package handler

import (
	"context"

	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/service"
)

// Posts is the part of service.PostService the handlers use.
type Posts interface {
	Feed(ctx context.Context) []model.Post
	ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.Post, error)
	ListByCategory(ctx context.Context, slug string) (model.Category, []model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, in service.CreatePostInput) (*model.Post, error)
	Like(ctx context.Context, postID string) (int64, error)
	AddComment(ctx context.Context, in service.AddCommentInput) (*model.Comment, error)
	Delete(ctx context.Context, postID, userID string) error
}

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (*service.Profile, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

type Featured interface {
	List(ctx context.Context) []model.FeaturedPost
}

type Feedback interface {
	Submit(ctx context.Context, in service.FeedbackInput) (*model.Feedback, error)
}

type Suggestions interface {
	Suggest(ctx context.Context, req service.SuggestionRequest) ([]string, error)
}

// Accounts turns a GitHub identity into a session.
type Accounts interface {
	LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*service.AuthResult, error)
	TokenTTL() int
}

// IdentityProvider is the OAuth side of the sign-in flow.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

var (
	_ Posts            = (*service.PostService)(nil)
	_ Profiles         = (*service.ProfileService)(nil)
	_ Featured         = (*service.FeaturedService)(nil)
	_ Feedback         = (*service.FeedbackService)(nil)
	_ Suggestions      = (*service.SuggestionService)(nil)
	_ Accounts         = (*service.AuthService)(nil)
	_ IdentityProvider = (*auth.GitHubProvider)(nil)
)
