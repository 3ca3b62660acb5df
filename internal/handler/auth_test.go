package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/handler"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/service"
)

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func callback(h *handler.AuthHandler, query, state string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: state})
	}
	rec := httptest.NewRecorder()
	h.HandleGitHubCallback(rec, req)
	return rec
}

func TestAuthHandler_HandleGitHubLogin(t *testing.T) {
	h := handler.NewAuthHandler(&MockProvider{}, &MockAccounts{}, false, testLogger())

	rec := httptest.NewRecorder()
	h.HandleGitHubLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	state := findCookie(rec, "oauth_state")
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "state="+state.Value))
}

func TestAuthHandler_HandleGitHubCallback(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &MockProvider{User: &auth.GitHubUser{ID: 42, Login: "octo"}}
		accounts := &MockAccounts{Result: &service.AuthResult{User: model.User{ID: "gh42"}, Token: "jwt-token"}}
		h := handler.NewAuthHandler(provider, accounts, true, testLogger())

		rec := callback(h, "code=abc&state=s1", "s1")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Equal(t, "abc", provider.Code)
		assert.Equal(t, int64(42), accounts.Captured.ID)

		session := findCookie(rec, auth.CookieName)
		require.NotNil(t, session)
		assert.Equal(t, "jwt-token", session.Value)
		assert.Equal(t, 3600, session.MaxAge)
		assert.True(t, session.HttpOnly)
		assert.True(t, session.Secure)
	})

	t.Run("state mismatch", func(t *testing.T) {
		provider := &MockProvider{}
		h := handler.NewAuthHandler(provider, &MockAccounts{}, false, testLogger())

		rec := callback(h, "code=abc&state=forged", "s1")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, provider.Code)
	})

	t.Run("missing state cookie", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockProvider{}, &MockAccounts{}, false, testLogger())
		assert.Equal(t, http.StatusBadRequest, callback(h, "code=abc&state=s1", "").Code)
	})

	t.Run("denied", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockProvider{}, &MockAccounts{}, false, testLogger())

		rec := callback(h, "error=access_denied&state=s1", "s1")

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?auth=denied", rec.Header().Get("Location"))
	})

	t.Run("exchange fails", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockProvider{Err: errors.New("bad code")}, &MockAccounts{}, false, testLogger())

		rec := callback(h, "code=abc&state=s1", "s1")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Nil(t, findCookie(rec, auth.CookieName))
	})

	t.Run("store fails", func(t *testing.T) {
		provider := &MockProvider{User: &auth.GitHubUser{ID: 42, Login: "octo"}}
		h := handler.NewAuthHandler(provider, &MockAccounts{Err: errors.New("down")}, false, testLogger())

		rec := callback(h, "code=abc&state=s1", "s1")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Nil(t, findCookie(rec, auth.CookieName))
	})
}

func TestAuthHandler_HandleLogout(t *testing.T) {
	h := handler.NewAuthHandler(&MockProvider{}, &MockAccounts{}, false, testLogger())

	rec := httptest.NewRecorder()
	h.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	session := findCookie(rec, auth.CookieName)
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
	assert.Equal(t, -1, session.MaxAge)
}
