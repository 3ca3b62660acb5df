// Package repotest holds the behavioural tests every repository.Store
// backend must pass. Backend packages call Run from their own _test.go files.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
)

// Opener returns a fresh, empty store. It should register its own cleanup.
type Opener func(t *testing.T) repository.Store

// Run executes the full suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("CreateThenList", func(t *testing.T) { testCreateThenList(t, open(t)) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListNewestFirst(t, open(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, open(t)) })
	t.Run("GetByIDNotFound", func(t *testing.T) { testGetByIDNotFound(t, open(t)) })
	t.Run("IncrementLikes", func(t *testing.T) { testIncrementLikes(t, open(t)) })
	t.Run("IncrementLikesConcurrent", func(t *testing.T) { testIncrementLikesConcurrent(t, open(t)) })
	t.Run("AppendComment", func(t *testing.T) { testAppendComment(t, open(t)) })
	t.Run("AppendCommentConcurrent", func(t *testing.T) { testAppendCommentConcurrent(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("Featured", func(t *testing.T) { testFeatured(t, open(t)) })
	t.Run("Feedback", func(t *testing.T) { testFeedback(t, open(t)) })
}

// CreatePost is a helper that stores a post and fails the test on error.
func CreatePost(t *testing.T, s repository.PostRepository, userID, caption string, category model.Category) *model.PostRecord {
	t.Helper()
	post := &model.PostRecord{UserID: userID, Caption: caption, Category: category}
	require.NoError(t, s.Create(context.Background(), post))
	return post
}

func testCreateThenList(t *testing.T, s repository.Store) {
	ctx := context.Background()
	created := CreatePost(t, s, "u1", "hello", model.CategoryPainting)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero(), "CreatedAt is server-assigned")

	posts, err := s.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	got := posts[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "hello", got.Caption)
	assert.Equal(t, model.CategoryPainting, got.Category)
	assert.Equal(t, int64(0), got.Likes)
	assert.NotNil(t, got.Comments)
	assert.Empty(t, got.Comments)
}

func testListNewestFirst(t *testing.T, s repository.Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, caption := range []string{"oldest", "middle", "newest"} {
		p := &model.PostRecord{
			UserID:    "u1",
			Caption:   caption,
			Category:  model.CategoryWriting,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.Create(ctx, p))
	}

	posts, err := s.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "newest", posts[0].Caption)
	assert.Equal(t, "middle", posts[1].Caption)
	assert.Equal(t, "oldest", posts[2].Caption)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt),
			"createdAt must be non-increasing")
	}
}

func testListFilters(t *testing.T, s repository.Store) {
	ctx := context.Background()
	CreatePost(t, s, "u1", "sunset", model.CategoryPhotography)
	CreatePost(t, s, "u2", "portrait", model.CategoryPhotography)
	CreatePost(t, s, "u1", "sonnet", model.CategoryWriting)

	byCategory, err := s.List(ctx, repository.ListOptions{Category: "photography"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	all, err := s.List(ctx, repository.ListOptions{Category: model.CategoryAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byUser, err := s.List(ctx, repository.ListOptions{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
	for _, p := range byUser {
		assert.Equal(t, "u1", p.UserID)
	}

	limited, err := s.List(ctx, repository.ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func testGetByIDNotFound(t *testing.T, s repository.Store) {
	_, err := s.GetByID(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func testIncrementLikes(t *testing.T, s repository.Store) {
	ctx := context.Background()
	post := CreatePost(t, s, "u1", "likeable", model.CategoryMusic)

	likes, err := s.IncrementLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	for i := 0; i < 4; i++ {
		likes, err = s.IncrementLikes(ctx, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(5), likes)

	stored, err := s.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Likes)

	_, err = s.IncrementLikes(ctx, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func testIncrementLikesConcurrent(t *testing.T, s repository.Store) {
	ctx := context.Background()
	post := CreatePost(t, s, "u1", "popular", model.CategoryCrafts)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementLikes(ctx, post.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stored.Likes)
}

func testAppendComment(t *testing.T, s repository.Store) {
	ctx := context.Background()
	post := CreatePost(t, s, "u1", "thread", model.CategoryPainting)

	for i, author := range []string{"u2", "u3", "u2"} {
		c := &model.CommentRecord{ID: fmt.Sprintf("c%d", i), UserID: author, Text: fmt.Sprintf("comment %d", i)}
		require.NoError(t, s.AppendComment(ctx, post.ID, c))
		assert.False(t, c.CreatedAt.IsZero(), "CreatedAt is set at write time")
	}

	stored, err := s.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 3)
	for i, c := range stored.Comments {
		assert.Equal(t, fmt.Sprintf("c%d", i), c.ID, "comments keep append order")
		assert.Equal(t, fmt.Sprintf("comment %d", i), c.Text)
	}
	assert.Equal(t, "u3", stored.Comments[1].UserID)

	err = s.AppendComment(ctx, "missing", &model.CommentRecord{ID: "x", UserID: "u1", Text: "hi"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func testAppendCommentConcurrent(t *testing.T, s repository.Store) {
	ctx := context.Background()
	post := CreatePost(t, s, "u1", "busy thread", model.CategoryWriting)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &model.CommentRecord{ID: fmt.Sprintf("c%d", i), UserID: "u2", Text: "hi"}
			if err := s.AppendComment(ctx, post.ID, c); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Comments, n, "no concurrent append may be lost")
}

func testDelete(t *testing.T, s repository.Store) {
	ctx := context.Background()
	post := CreatePost(t, s, "u1", "short-lived", model.CategoryMusic)
	require.NoError(t, s.AppendComment(ctx, post.ID, &model.CommentRecord{ID: "c1", UserID: "u2", Text: "bye"}))

	require.NoError(t, s.Delete(ctx, post.ID))

	_, err := s.GetByID(ctx, post.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = s.Delete(ctx, post.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "second delete: got %v", err)
}

func testUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()

	u := &model.UserRecord{UID: "u1", DisplayName: "CreativeCat", PhotoURL: "https://example.com/a.png", Bio: "Painting my world"}
	require.NoError(t, s.Upsert(ctx, u))

	got, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "CreativeCat", got.DisplayName)
	assert.Equal(t, "Painting my world", got.Bio)

	// A login refresh carries no bio; the stored one survives.
	require.NoError(t, s.Upsert(ctx, &model.UserRecord{UID: "u1", DisplayName: "Cat", PhotoURL: "https://example.com/b.png"}))
	got, err = s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Cat", got.DisplayName)
	assert.Equal(t, "https://example.com/b.png", got.PhotoURL)
	assert.Equal(t, "Painting my world", got.Bio)

	require.NoError(t, s.Upsert(ctx, &model.UserRecord{UID: "u2", DisplayName: "LensLife"}))

	batch, err := s.GetUsersByIDs(ctx, []string{"u1", "u2", "ghost"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, "LensLife", batch["u2"].DisplayName)
	_, ok := batch["ghost"]
	assert.False(t, ok, "missing ids are absent, not zero-valued")

	empty, err := s.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.GetUserByID(ctx, "ghost")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func testFeatured(t *testing.T, s repository.Store) {
	ctx := context.Background()

	empty, err := s.ListFeatured(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	links := []string{"https://picsum.photos/id/10/800/450", "https://picsum.photos/id/20/800/450"}
	for _, l := range links {
		require.NoError(t, s.AddFeatured(ctx, &model.FeaturedPost{Link: l}))
	}

	featured, err := s.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	for i, f := range featured {
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, links[i], f.Link)
	}
}

func testFeedback(t *testing.T, s repository.Store) {
	fb := &model.Feedback{UserID: "u1", Text: "Love the new category pages!"}
	require.NoError(t, s.CreateFeedback(context.Background(), fb))
	assert.NotEmpty(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())
}
