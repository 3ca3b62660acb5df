package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// MockPosts returns canned results and captures what the handler passed in.
type MockPosts struct {
	Posts    []model.Post
	Post     *model.Post
	Comment  *model.Comment
	Likes    int64
	Category model.Category
	Err      error

	CapturedOpts    repository.ListOptions
	CapturedCreate  service.CreatePostInput
	CapturedComment service.AddCommentInput
	CapturedID      string
	CapturedUserID  string
}

func (m *MockPosts) Feed(context.Context) []model.Post {
	if m.Err != nil {
		return []model.Post{}
	}
	return m.Posts
}

func (m *MockPosts) ListPosts(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	m.CapturedOpts = opts
	return m.Posts, m.Err
}

func (m *MockPosts) ListByCategory(_ context.Context, slug string) (model.Category, []model.Post, error) {
	m.CapturedID = slug
	return m.Category, m.Posts, m.Err
}

func (m *MockPosts) GetPost(_ context.Context, id string) (*model.Post, error) {
	m.CapturedID = id
	return m.Post, m.Err
}

func (m *MockPosts) Create(_ context.Context, in service.CreatePostInput) (*model.Post, error) {
	m.CapturedCreate = in
	return m.Post, m.Err
}

func (m *MockPosts) Like(_ context.Context, id string) (int64, error) {
	m.CapturedID = id
	return m.Likes, m.Err
}

func (m *MockPosts) AddComment(_ context.Context, in service.AddCommentInput) (*model.Comment, error) {
	m.CapturedComment = in
	return m.Comment, m.Err
}

func (m *MockPosts) Delete(_ context.Context, postID, userID string) error {
	m.CapturedID, m.CapturedUserID = postID, userID
	return m.Err
}

type MockProfiles struct {
	Profile    *service.Profile
	User       *model.User
	Err        error
	CurrentErr error
}

func (m *MockProfiles) GetProfile(context.Context, string) (*service.Profile, error) {
	return m.Profile, m.Err
}

func (m *MockProfiles) CurrentUser(context.Context, string) (*model.User, error) {
	return m.User, m.CurrentErr
}

type MockFeatured struct{ Links []model.FeaturedPost }

func (m *MockFeatured) List(context.Context) []model.FeaturedPost { return m.Links }

type MockFeedback struct {
	Err      error
	Captured service.FeedbackInput
}

func (m *MockFeedback) Submit(_ context.Context, in service.FeedbackInput) (*model.Feedback, error) {
	m.Captured = in
	if m.Err != nil {
		return nil, m.Err
	}
	return &model.Feedback{ID: "f1", UserID: in.UserID, Text: in.Text}, nil
}

type MockSuggestions struct {
	Suggestions []string
	Err         error
	Captured    service.SuggestionRequest
}

func (m *MockSuggestions) Suggest(_ context.Context, req service.SuggestionRequest) ([]string, error) {
	m.Captured = req
	return m.Suggestions, m.Err
}

type MockAccounts struct {
	Result   *service.AuthResult
	Err      error
	Captured *auth.GitHubUser
}

func (m *MockAccounts) LoginOrRegisterGitHub(_ context.Context, gh *auth.GitHubUser) (*service.AuthResult, error) {
	m.Captured = gh
	return m.Result, m.Err
}

func (m *MockAccounts) TokenTTL() int { return 3600 }

type MockProvider struct {
	User *auth.GitHubUser
	Err  error
	Code string
}

func (m *MockProvider) AuthURL(state string) string {
	return "https://github.test/login/oauth/authorize?state=" + state
}

func (m *MockProvider) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	m.Code = code
	return m.User, m.Err
}

// serve routes one request through a chi router so URL params resolve.
// A non-empty userID is placed in the request context as the session user.
func serve(method, pattern, target, body, userID string, h http.HandlerFunc) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
