package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/service"
)

// APIHandler serves the JSON endpoints the browser script calls.
//
// Successful writes answer {"success": true, ...}; failures answer an
// ErrorResponse with the status of the error's kind.
type APIHandler struct {
	posts       Posts
	profiles    Profiles
	featured    Featured
	feedback    Feedback
	suggestions Suggestions
	logger      *slog.Logger
}

func NewAPIHandler(
	posts Posts,
	profiles Profiles,
	featured Featured,
	feedback Feedback,
	suggestions Suggestions,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		posts:       posts,
		profiles:    profiles,
		featured:    featured,
		feedback:    feedback,
		suggestions: suggestions,
		logger:      logger,
	}
}

// HandleListPosts returns posts newest first.
//
// HTTP: GET /api/posts?category=music&user=gh42
func (h *APIHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	opts := repository.ListOptions{UserID: r.URL.Query().Get("user")}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, ok := model.ParseCategory(raw)
		if !ok {
			writeError(w, h.logger, apperror.ValidationFailed("category", "Please select a category."))
			return
		}
		opts.Category = category
	}

	posts, err := h.posts.ListPosts(r.Context(), opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "posts": posts})
}

// HandleGetPost returns one post.
//
// HTTP: GET /api/posts/{id}
func (h *APIHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "post": post})
}

// HandleCreatePost stores a post for the signed-in user.
//
// HTTP: POST /api/posts
// BODY: {"caption": "...", "category": "Painting", "image": "data:image/png;base64,..."}
func (h *APIHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.CreatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	// The owner always comes from the session, never from the body.
	in.UserID, _ = auth.UserIDFromContext(r.Context())

	post, err := h.posts.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "post": post})
}

// HandleLike adds one like.
//
// HTTP: POST /api/posts/{id}/like
func (h *APIHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	likes, err := h.posts.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": likes})
}

// HandleComment appends a comment by the signed-in user.
//
// HTTP: POST /api/posts/{id}/comments
// BODY: {"text": "..."}
func (h *APIHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	var in service.AddCommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in.PostID = chi.URLParam(r, "id")
	in.UserID, _ = auth.UserIDFromContext(r.Context())

	comment, err := h.posts.AddComment(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": comment})
}

// HandleDeletePost removes one of the signed-in user's posts.
//
// HTTP: DELETE /api/posts/{id}
func (h *APIHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HTTP: GET /api/featured
func (h *APIHandler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "featured": h.featured.List(r.Context())})
}

// HandleProfile returns a member with their posts.
//
// HTTP: GET /api/users/{id}
func (h *APIHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": profile.User, "posts": profile.Posts})
}

// HandleMe returns the signed-in user.
//
// HTTP: GET /api/me
func (h *APIHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.profiles.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// HandleFeedback stores a message from the feedback dialog. Signing in is
// optional; the sender is recorded when known.
//
// HTTP: POST /api/feedback
// BODY: {"feedback": "..."}
func (h *APIHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var in service.FeedbackInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in.UserID, _ = auth.UserIDFromContext(r.Context())

	if _, err := h.feedback.Submit(r.Context(), in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// HandleSuggestions asks the prompt flow for project ideas. An empty body
// uses the signed-in user's history, or demo text when signed out.
//
// HTTP: POST /api/suggestions
// BODY: {"userPosts": "...", "userLikes": "..."} (optional)
func (h *APIHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req service.SuggestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.UserID, _ = auth.UserIDFromContext(r.Context())

	suggestions, err := h.suggestions.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "projectSuggestions": suggestions})
}

// HandleHealth reports liveness.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
