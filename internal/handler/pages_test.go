package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/handler"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/service"
	"github.com/sakif/bloom/internal/view"
	"github.com/sakif/bloom/web"
)

func newPageHandler(t *testing.T, posts *MockPosts, profiles *MockProfiles, featured *MockFeatured) *handler.PageHandler {
	t.Helper()
	renderer, err := view.NewRenderer(web.FS, testLogger())
	require.NoError(t, err)
	return handler.NewPageHandler(posts, profiles, featured, renderer, true, testLogger())
}

func TestPageHandler_HandleHome(t *testing.T) {
	posts := &MockPosts{Posts: []model.Post{
		{ID: "p1", User: model.User{ID: "u1", Name: "Alice"}, Caption: "Castle by the sea", Category: model.CategoryPainting},
	}}
	featured := &MockFeatured{Links: []model.FeaturedPost{{ID: "f1", Link: "https://example.com/gallery"}}}
	h := newPageHandler(t, posts, &MockProfiles{}, featured)

	rec := serve(http.MethodGet, "/", "/", "", "", h.HandleHome)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	html := rec.Body.String()
	assert.Contains(t, html, "Popular")
	assert.Contains(t, html, "Castle by the sea")
	assert.Contains(t, html, "https://example.com/gallery")
	assert.Contains(t, html, "Sign in with GitHub")
}

func TestPageHandler_HomeSurvivesStoreFailure(t *testing.T) {
	h := newPageHandler(t, &MockPosts{Err: errors.New("down")}, &MockProfiles{}, &MockFeatured{})

	rec := serve(http.MethodGet, "/", "/", "", "", h.HandleHome)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageHandler_SignedInHeader(t *testing.T) {
	profiles := &MockProfiles{User: &model.User{ID: "gh1", Name: "Octo Cat"}}
	h := newPageHandler(t, &MockPosts{}, profiles, &MockFeatured{})

	rec := serve(http.MethodGet, "/", "/", "", "gh1", h.HandleHome)

	html := rec.Body.String()
	assert.Contains(t, html, `data-user-id="gh1"`)
	assert.Contains(t, html, "Sign out")
	assert.NotContains(t, html, "Sign in with GitHub")
}

func TestPageHandler_StaleSessionRendersSignedOut(t *testing.T) {
	profiles := &MockProfiles{CurrentErr: apperror.NotFound("user", "gh404")}
	h := newPageHandler(t, &MockPosts{}, profiles, &MockFeatured{})

	rec := serve(http.MethodGet, "/", "/", "", "gh404", h.HandleHome)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in with GitHub")
}

func TestPageHandler_HandleCategory(t *testing.T) {
	t.Run("known", func(t *testing.T) {
		posts := &MockPosts{Category: model.CategoryMusic, Posts: []model.Post{{ID: "p1", Caption: "New song", Category: model.CategoryMusic}}}
		h := newPageHandler(t, posts, &MockProfiles{}, &MockFeatured{})

		rec := serve(http.MethodGet, "/category/{slug}", "/category/MUSIC", "", "", h.HandleCategory)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MUSIC", posts.CapturedID)
		assert.Contains(t, rec.Body.String(), "New song")
	})

	t.Run("unknown", func(t *testing.T) {
		posts := &MockPosts{Err: apperror.NotFound("category", "dance")}
		h := newPageHandler(t, posts, &MockProfiles{}, &MockFeatured{})

		rec := serve(http.MethodGet, "/category/{slug}", "/category/dance", "", "", h.HandleCategory)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Category not found")
	})

	t.Run("store failure shows an empty list", func(t *testing.T) {
		posts := &MockPosts{Category: model.CategoryMusic, Err: apperror.Transient("Failed to fetch posts.", nil)}
		h := newPageHandler(t, posts, &MockProfiles{}, &MockFeatured{})

		rec := serve(http.MethodGet, "/category/{slug}", "/category/music", "", "", h.HandleCategory)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No posts in Music yet.")
	})
}

func TestPageHandler_HandleProfile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		profiles := &MockProfiles{Profile: &service.Profile{User: model.User{ID: "u1", Name: "Alice", Bio: "Watercolours."}}}
		h := newPageHandler(t, &MockPosts{}, profiles, &MockFeatured{})

		rec := serve(http.MethodGet, "/profile/{userID}", "/profile/u1", "", "", h.HandleProfile)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Watercolours.")
	})

	t.Run("missing", func(t *testing.T) {
		profiles := &MockProfiles{Err: apperror.NotFound("user", "nobody")}
		h := newPageHandler(t, &MockPosts{}, profiles, &MockFeatured{})

		rec := serve(http.MethodGet, "/profile/{userID}", "/profile/nobody", "", "", h.HandleProfile)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "User not found")
	})

	t.Run("store failure", func(t *testing.T) {
		profiles := &MockProfiles{Err: apperror.Transient("Failed to fetch user.", nil)}
		h := newPageHandler(t, &MockPosts{}, profiles, &MockFeatured{})

		rec := serve(http.MethodGet, "/profile/{userID}", "/profile/u1", "", "", h.HandleProfile)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "Something went wrong")
	})
}

func TestPageHandler_HandlePost(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		posts := &MockPosts{Post: &model.Post{ID: "p1", Caption: "Vase", Category: model.CategoryCrafts}}
		h := newPageHandler(t, posts, &MockProfiles{}, &MockFeatured{})

		rec := serve(http.MethodGet, "/post/{postID}", "/post/p1", "", "", h.HandlePost)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "p1", posts.CapturedID)
		assert.Contains(t, rec.Body.String(), `data-post-id="p1"`)
	})

	t.Run("missing", func(t *testing.T) {
		posts := &MockPosts{Err: apperror.NotFound("post", "gone")}
		h := newPageHandler(t, posts, &MockProfiles{}, &MockFeatured{})

		rec := serve(http.MethodGet, "/post/{postID}", "/post/gone", "", "", h.HandlePost)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "We couldn&#39;t find the post you were looking for.")
	})
}

func TestPageHandler_HandleNotFound(t *testing.T) {
	h := newPageHandler(t, &MockPosts{}, &MockProfiles{}, &MockFeatured{})

	rec := serve(http.MethodGet, "/nowhere", "/nowhere", "", "", h.HandleNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}
