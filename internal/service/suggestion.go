package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/suggest"
)

// Suggester is the prompt flow.
type Suggester interface {
	Suggest(ctx context.Context, in suggest.Input) ([]string, error)
}

// demoInput stands in for members with no history yet.
var demoInput = suggest.Input{
	UserPosts: `
      - "Finished my latest watercolor of a castle by the sea."
      - "Experimenting with some abstract forms and our theme colors."
      - "My first attempt at pottery. It's a bit wobbly, but it's mine!"
    `,
	UserLikes: `
      - A post about oil painting techniques for landscapes.
      - A photo of a hand-thrown ceramic vase.
      - A tutorial on mixing colors for watercolor painting.
    `,
}

const (
	historyPosts = 10
	historyLikes = 5
)

// SuggestionService picks the input for the prompt flow.
type SuggestionService struct {
	posts  repository.PostRepository
	flow   Suggester
	logger *slog.Logger
}

func NewSuggestionService(posts repository.PostRepository, flow Suggester, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{posts: posts, flow: flow, logger: logger}
}

// SuggestionRequest names whose history to use. Explicit UserPosts and
// UserLikes take precedence over the stored history.
type SuggestionRequest struct {
	UserID    string `json:"-"`
	UserPosts string `json:"userPosts"`
	UserLikes string `json:"userLikes"`
}

// Suggest returns project ideas. On failure the error matches
// suggest.ErrSuggestionFailed.
func (s *SuggestionService) Suggest(ctx context.Context, req SuggestionRequest) ([]string, error) {
	return s.flow.Suggest(ctx, s.input(ctx, req))
}

// input uses, in order: the request's own text, the signed-in member's
// captions plus the community's most-liked posts, the demo history.
func (s *SuggestionService) input(ctx context.Context, req SuggestionRequest) suggest.Input {
	if strings.TrimSpace(req.UserPosts) != "" || strings.TrimSpace(req.UserLikes) != "" {
		return suggest.Input{UserPosts: req.UserPosts, UserLikes: req.UserLikes}
	}
	if req.UserID == "" {
		return demoInput
	}

	own, err := s.posts.List(ctx, repository.ListOptions{UserID: req.UserID, Limit: historyPosts})
	if err != nil || len(own) == 0 {
		if err != nil {
			s.logger.Warn("could not load post history, using demo input",
				slog.String("userID", req.UserID),
				slog.String("error", err.Error()),
			)
		}
		return demoInput
	}

	in := suggest.Input{UserPosts: bulletCaptions(own), UserLikes: demoInput.UserLikes}
	if all, err := s.posts.List(ctx, repository.ListOptions{}); err == nil {
		if popular := mostLiked(all, req.UserID, historyLikes); len(popular) > 0 {
			in.UserLikes = bulletLikes(popular)
		}
	}
	return in
}

func bulletCaptions(posts []model.PostRecord) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "- %q\n", p.Caption)
	}
	return b.String()
}

func bulletLikes(posts []model.PostRecord) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "- A %s post: %q\n", strings.ToLower(string(p.Category)), p.Caption)
	}
	return b.String()
}

// mostLiked returns up to n liked posts by other members, most likes first.
func mostLiked(posts []model.PostRecord, exceptUserID string, n int) []model.PostRecord {
	var out []model.PostRecord
	for _, p := range posts {
		if p.UserID != exceptUserID && p.Likes > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
