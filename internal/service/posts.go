package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/pagecache"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/storage"
)

// Length limits, enforced through the caption_max and comment_max
// validation tags.
const (
	MaxCaptionLength = 280
	MaxCommentLength = 500
)

// PostService reads and mutates posts.
//
// Reads resolve every user a page of posts refers to with one batched
// lookup. Mutations are single atomic store operations followed by an
// invalidation of the pages that show the post.
type PostService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	images    storage.ImageStore // nil: posts are text-only
	pages     Invalidator
	validator *validator.Validate
	logger    *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	images storage.ImageStore,
	pages Invalidator,
	logger *slog.Logger,
) *PostService {
	if pages == nil {
		pages = NopInvalidator{}
	}
	return &PostService{
		posts:     posts,
		users:     users,
		images:    images,
		pages:     pages,
		validator: newValidator(),
		logger:    logger,
	}
}

// CreatePostInput is the upload dialog's payload.
type CreatePostInput struct {
	UserID   string `json:"userId"   validate:"required"`
	Caption  string `json:"caption"  validate:"required,caption_max"`
	Category string `json:"category" validate:"required,oneof=Painting Photography Writing Music Crafts"`
	// Image is an optional data: URI.
	Image string `json:"image"`
}

// AddCommentInput is the comment form's payload.
type AddCommentInput struct {
	PostID string `json:"postId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	Text   string `json:"text"   validate:"required,comment_max"`
}

// Feed returns every post newest first. A store failure is logged and an
// empty list is returned.
func (s *PostService) Feed(ctx context.Context) []model.Post {
	posts, err := s.ListPosts(ctx, repository.ListOptions{})
	if err != nil {
		return []model.Post{}
	}
	return posts
}

// ListPosts is Feed with the failure reported as a TransientIO error.
func (s *PostService) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	records, err := s.posts.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to fetch posts",
			slog.String("category", string(opts.Category)),
			slog.String("userID", opts.UserID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Transient("Failed to fetch posts.", err)
	}
	return s.resolve(ctx, records), nil
}

// ListByCategory lists the posts on a category page. slug is matched
// case-insensitively; "all" lists everything.
func (s *PostService) ListByCategory(ctx context.Context, slug string) (model.Category, []model.Post, error) {
	category, ok := model.ParseCategory(slug)
	if !ok {
		return "", nil, apperror.NotFound("category", slug)
	}
	posts, err := s.ListPosts(ctx, repository.ListOptions{Category: category})
	return category, posts, err
}

func (s *PostService) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	return s.ListPosts(ctx, repository.ListOptions{UserID: userID})
}

// GetPost returns one resolved post.
func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Post ID is required.")
	}

	rec, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Failed to fetch post.")
	}
	post := s.resolve(ctx, []model.PostRecord{*rec})[0]
	return &post, nil
}

// Create validates the input, uploads the image when one is attached and
// stores a post with no likes and no comments.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	in.Caption = strings.TrimSpace(in.Caption)
	if c, ok := model.ParseCategory(in.Category); ok {
		in.Category = string(c)
	}
	if err := validate(s.validator, in); err != nil {
		return nil, err
	}

	rec := &model.PostRecord{
		ID:       xid.New().String(),
		UserID:   in.UserID,
		Caption:  in.Caption,
		Category: model.Category(in.Category),
		Comments: []model.CommentRecord{},
	}

	if in.Image != "" {
		url, err := s.uploadImage(ctx, rec.ID, in.Image)
		if err != nil {
			return nil, err
		}
		rec.ImageURL = url
	}

	if err := s.posts.Create(ctx, rec); err != nil {
		s.logger.Error("failed to create post",
			slog.String("userID", in.UserID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Transient("Failed to create post.", err)
	}

	s.logger.Info("post created",
		slog.String("id", rec.ID),
		slog.String("userID", rec.UserID),
		slog.String("category", string(rec.Category)),
	)
	s.pages.Invalidate(pagecache.PathsForPost(rec.Category, rec.UserID, "")...)

	post := s.resolve(ctx, []model.PostRecord{*rec})[0]
	return &post, nil
}

func (s *PostService) uploadImage(ctx context.Context, postID, dataURI string) (string, error) {
	if s.images == nil {
		return "", apperror.ValidationFailed("image", "Image uploads are not enabled.")
	}
	data, contentType, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	url, err := s.images.Upload(ctx, postID, data, contentType)
	if err != nil {
		s.logger.Error("image upload failed",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return "", apperror.Transient("Failed to create post.", err)
	}
	return url, nil
}

// Like adds one like and returns the new count. Repeated calls each count.
func (s *PostService) Like(ctx context.Context, postID string) (int64, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return 0, apperror.ValidationFailed("id", "Post ID is required.")
	}

	likes, err := s.posts.IncrementLikes(ctx, postID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.Error("failed to like post", slog.String("postID", postID), slog.String("error", err.Error()))
		}
		return 0, storeError(err, "Failed to like post.")
	}

	s.invalidatePost(ctx, postID)
	return likes, nil
}

// AddComment appends a comment. Blank text is rejected before any store
// request is made.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (*model.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validate(s.validator, in); err != nil {
		return nil, err
	}

	rec := &model.CommentRecord{
		ID:     xid.New().String(),
		UserID: in.UserID,
		Text:   in.Text,
	}
	if err := s.posts.AppendComment(ctx, in.PostID, rec); err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.Error("failed to add comment", slog.String("postID", in.PostID), slog.String("error", err.Error()))
		}
		return nil, storeError(err, "Failed to add comment.")
	}

	s.invalidatePost(ctx, in.PostID)

	comment := s.resolveComment(ctx, *rec)
	return &comment, nil
}

// Delete removes a post with its comments. Only the owner may delete.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return storeError(err, "Failed to delete post.")
	}
	if post.UserID != userID {
		return apperror.Forbidden("You can only delete your own posts.")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.Error("failed to delete post", slog.String("postID", postID), slog.String("error", err.Error()))
		}
		return storeError(err, "Failed to delete post.")
	}

	s.logger.Info("post deleted", slog.String("id", postID), slog.String("userID", userID))
	s.pages.Invalidate(pagecache.PathsForPost(post.Category, post.UserID, postID)...)
	return nil
}

// invalidatePost drops the pages showing a post. Category and owner come
// from the stored record; if it cannot be read, every page is dropped.
func (s *PostService) invalidatePost(ctx context.Context, postID string) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		s.logger.Warn("dropping all cached pages, post lookup failed",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		s.pages.InvalidateAll()
		return
	}
	s.pages.Invalidate(pagecache.PathsForPost(post.Category, post.UserID, postID)...)
}

// storeError passes kinded errors through and marks everything else as a
// transient store failure.
func storeError(err error, message string) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}
	return apperror.Transient(message, fmt.Errorf("store: %w", err))
}
