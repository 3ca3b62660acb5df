package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloom/internal/apperror"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGenerator records the prompt and returns canned results.
type fakeGenerator struct {
	prompt string
	out    *Output
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (*Output, error) {
	f.prompt = prompt
	return f.out, f.err
}

func TestRenderSubstitutesVerbatim(t *testing.T) {
	prompt, err := Render(Input{
		UserPosts: `- "Finished my <watercolor> & castle"`,
		UserLikes: "- oil painting",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, `User Posts: - "Finished my <watercolor> & castle"`)
	assert.Contains(t, prompt, "User Likes: - oil painting")
	assert.Contains(t, prompt, "'projectSuggestions' field")
	assert.Contains(t, prompt, "Do not suggest the same suggestion twice.")
}

func TestSuggestReturnsListUnmodified(t *testing.T) {
	// Duplicates are passed through; uniqueness is only requested in the prompt.
	gen := &fakeGenerator{out: &Output{ProjectSuggestions: []string{"Paint a seascape", "Paint a seascape", "Throw a bowl"}}}
	flow := NewFlow(gen, quietLogger())

	got, err := flow.Suggest(context.Background(), Input{UserPosts: "posts", UserLikes: "likes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paint a seascape", "Paint a seascape", "Throw a bowl"}, got)
	assert.Contains(t, gen.prompt, "User Posts: posts")
}

func TestSuggestEmptyListIsNotNil(t *testing.T) {
	flow := NewFlow(&fakeGenerator{out: &Output{ProjectSuggestions: []string{}}}, quietLogger())

	got, err := flow.Suggest(context.Background(), Input{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSuggestFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"backend error", &fakeGenerator{err: errors.New("quota exceeded")}},
		{"nil output", &fakeGenerator{}},
		{"missing field", &fakeGenerator{out: &Output{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFlow(tt.gen, quietLogger()).Suggest(context.Background(), Input{})
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSuggestionFailed))
			assert.Equal(t, apperror.KindTransientIO, apperror.KindOf(err))
			assert.Equal(t, "Failed to get AI suggestions.", err.Error())
		})
	}
}

// sentRequest is the part of a chat-completions request body the tests
// check.
type sentRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string         `json:"name"`
			Strict bool           `json:"strict"`
			Schema map[string]any `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

func TestOpenAIGenerator(t *testing.T) {
	var got sentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		content, _ := json.Marshal(Output{ProjectSuggestions: []string{"Sketch a lighthouse"}})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": string(content)},
				},
			},
		})
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "gpt-4o-mini"})
	out, err := gen.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sketch a lighthouse"}, out.ProjectSuggestions)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "the prompt", got.Messages[0].Content)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "suggest_project_prompts", got.ResponseFormat.JSONSchema.Name)
	assert.True(t, got.ResponseFormat.JSONSchema.Strict)
	assert.Contains(t, got.ResponseFormat.JSONSchema.Schema["properties"], "projectSuggestions")
}

func TestOpenAIGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"c","choices":[]}`))
		}},
		{"content not JSON", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"c","choices":[{"index":0,"message":{"role":"assistant","content":"Here are some ideas!"}}]}`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			gen := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Timeout: 50 * time.Millisecond})
			_, err := gen.Generate(context.Background(), "p")
			assert.Error(t, err)
		})
	}
}

func TestOpenAIGeneratorDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test"}).Generate(context.Background(), "p")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{BaseURL: "http://127.0.0.1:1"}).Generate(context.Background(), "p")
	assert.Error(t, err)
}
