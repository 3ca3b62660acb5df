package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/pagecache"
	"github.com/sakif/bloom/internal/repository"
)

// FeaturedService serves the homepage carousel.
type FeaturedService struct {
	repo   repository.FeaturedRepository
	pages  Invalidator
	logger *slog.Logger
}

func NewFeaturedService(repo repository.FeaturedRepository, pages Invalidator, logger *slog.Logger) *FeaturedService {
	if pages == nil {
		pages = NopInvalidator{}
	}
	return &FeaturedService{repo: repo, pages: pages, logger: logger}
}

// List returns the carousel entries, or an empty list when the store fails.
func (s *FeaturedService) List(ctx context.Context) []model.FeaturedPost {
	posts, err := s.repo.ListFeatured(ctx)
	if err != nil {
		s.logger.Error("failed to fetch featured posts", slog.String("error", err.Error()))
		return []model.FeaturedPost{}
	}
	if posts == nil {
		posts = []model.FeaturedPost{}
	}
	return posts
}

// Add appends a carousel entry. Only the seed command calls it.
func (s *FeaturedService) Add(ctx context.Context, link string) (*model.FeaturedPost, error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if link == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperror.ValidationFailed("link", "Link must be an http(s) URL.")
	}

	post := &model.FeaturedPost{ID: xid.New().String(), Link: link}
	if err := s.repo.AddFeatured(ctx, post); err != nil {
		return nil, storeError(err, "Failed to add featured post.")
	}
	s.pages.Invalidate(pagecache.HomePath)
	return post, nil
}
