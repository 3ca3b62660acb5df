// Package suggest turns a member's posts and likes into project ideas by
// sending a fixed prompt to a hosted text-generation model.
//
// FLOW:
//  1. Render the prompt template with the two free-text inputs, verbatim
//  2. Ask the Generator for output matching {projectSuggestions: string[]}
//  3. Return the list unmodified
//
// Any failure in step 2 surfaces as ErrSuggestionFailed. Nothing is retried
// and the list is not de-duplicated; the prompt asks the model for distinct
// ideas but the result is not checked.
package suggest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/sakif/bloom/internal/apperror"
)

// ErrSuggestionFailed is matched by every error Suggest returns.
var ErrSuggestionFailed = errors.New("Failed to get AI suggestions.")

// Input carries the two free-text blocks substituted into the prompt.
type Input struct {
	UserPosts string `json:"userPosts"`
	UserLikes string `json:"userLikes"`
}

// Output is the structured response the model must produce.
type Output struct {
	ProjectSuggestions []string `json:"projectSuggestions"`
}

// Generator sends a rendered prompt to a model and decodes the structured
// result.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Output, error)
}

const promptText = `You are a creative AI assistant designed to suggest project prompts to users based on their interests.

Analyze the user's past posts, updates, and liked content to understand their creative preferences and suggest relevant project ideas.

User Posts: {{.UserPosts}}
User Likes: {{.UserLikes}}

Based on this information, provide a list of project suggestions that align with their interests.  Return them as a list of strings in the 'projectSuggestions' field.
The suggestions should be diverse and engaging to encourage creativity and community participation.
Do not suggest the same suggestion twice.  Do not write introductory and closing remarks.
`

var promptTemplate = template.Must(template.New("suggestProjectPrompts").Parse(promptText))

// Flow is the prompt wrapper around a Generator.
type Flow struct {
	gen    Generator
	logger *slog.Logger
}

func NewFlow(gen Generator, logger *slog.Logger) *Flow {
	return &Flow{gen: gen, logger: logger}
}

// Render returns the exact prompt sent for in.
func Render(in Input) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("suggest: rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// Suggest returns the model's suggestions for in. On success the slice is
// never nil.
func (f *Flow) Suggest(ctx context.Context, in Input) ([]string, error) {
	prompt, err := Render(in)
	if err != nil {
		return nil, f.fail(err)
	}

	out, err := f.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, f.fail(err)
	}
	if out == nil || out.ProjectSuggestions == nil {
		return nil, f.fail(errors.New("model returned no projectSuggestions field"))
	}

	return out.ProjectSuggestions, nil
}

func (f *Flow) fail(cause error) error {
	f.logger.Error("suggestion generation failed", slog.String("error", cause.Error()))
	return apperror.Transient(ErrSuggestionFailed.Error(), fmt.Errorf("%w: %w", ErrSuggestionFailed, cause))
}
