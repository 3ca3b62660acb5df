package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/view"
)

// PageHandler serves the server-rendered pages. Read failures never turn
// into error pages: the feed and category listings fall back to empty
// lists, and only a missing post or user shows the not-found page.
type PageHandler struct {
	posts    Posts
	profiles Profiles
	featured Featured
	renderer *view.Renderer
	uploads  bool
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler. uploads controls whether the upload
// dialog offers an image field.
func NewPageHandler(
	posts Posts,
	profiles Profiles,
	featured Featured,
	renderer *view.Renderer,
	uploads bool,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		posts:    posts,
		profiles: profiles,
		featured: featured,
		renderer: renderer,
		uploads:  uploads,
		logger:   logger,
	}
}

// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.render(w, r, http.StatusOK, view.PageHome, view.Layout{
		Title:  "Bloom",
		Active: model.CategoryAll.Slug(),
		Content: view.HomeContent{
			Featured: h.featured.List(ctx),
			Sections: view.HomeSections(h.posts.Feed(ctx)),
		},
	})
}

// HandleCategory lists one category. "all" lists everything.
//
// HTTP: GET /category/{slug}
func (h *PageHandler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, posts, err := h.posts.ListByCategory(r.Context(), slug)
	switch {
	case apperror.KindOf(err) == apperror.KindNotFound:
		h.notFound(w, r, "Category not found", "There is no category called "+view.CategoryTitle(slug)+".")
		return
	case err != nil:
		posts = []model.Post{}
	}

	title := string(category)
	h.render(w, r, http.StatusOK, view.PageCategory, view.Layout{
		Title:   title,
		Active:  category.Slug(),
		Content: view.CategoryContent{Title: title, Posts: posts},
	})
}

// HTTP: GET /profile/{userID}
func (h *PageHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.readFailed(w, r, err, "User not found", "We couldn't find a profile for this user.")
		return
	}

	h.render(w, r, http.StatusOK, view.PageProfile, view.Layout{
		Title:   profile.User.Name,
		Content: view.ProfileContent{User: profile.User, Posts: profile.Posts},
	})
}

// HTTP: GET /post/{postID}
func (h *PageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.readFailed(w, r, err, "Post not found", "We couldn't find the post you were looking for.")
		return
	}

	h.render(w, r, http.StatusOK, view.PagePost, view.Layout{
		Title:   post.Caption,
		Active:  post.Category.Slug(),
		Content: view.PostContent{Post: *post},
	})
}

// HandleNotFound is the router's fallback for unknown paths.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Page not found", "We couldn't find the page you were looking for.")
}

// readFailed shows the not-found page for missing records and a 503 page
// for store failures.
func (h *PageHandler) readFailed(w http.ResponseWriter, r *http.Request, err error, heading, message string) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound, apperror.KindValidation:
		h.notFound(w, r, heading, message)
	default:
		h.logger.Warn("page read failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.render(w, r, http.StatusServiceUnavailable, view.PageNotFound, view.Layout{
			Title:   "Something went wrong",
			Content: view.NotFoundContent{Heading: "Something went wrong", Message: "Please try again in a moment."},
		})
	}
}

func (h *PageHandler) notFound(w http.ResponseWriter, r *http.Request, heading, message string) {
	h.render(w, r, http.StatusNotFound, view.PageNotFound, view.Layout{
		Title:   heading,
		Content: view.NotFoundContent{Heading: heading, Message: message},
	})
}

// render fills in the session part of the layout and writes the page.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, layout view.Layout) {
	layout.CurrentUser = h.currentUser(r)
	layout.Uploads = h.uploads

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, layout); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("writing page failed", slog.String("page", page), slog.String("error", err.Error()))
	}
}

// currentUser resolves the session user for the header. A token whose user
// record is gone renders the page signed out.
func (h *PageHandler) currentUser(r *http.Request) *model.User {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	user, err := h.profiles.CurrentUser(r.Context(), userID)
	if err != nil {
		h.logger.Warn("session user lookup failed", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil
	}
	return user
}
