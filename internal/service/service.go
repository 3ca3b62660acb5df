// Package service contains the business rules of Bloom.
//
// LAYERING:
//
//	Handler (HTTP) → Service (rules) → Repository (store)
//
// Services take repository interfaces, never a concrete backend, so the same
// rules run over SQLite, Badger or MongoDB and over the in-memory fakes the
// tests use. Every error a service returns is an *apperror.AppError (or wraps
// one) so handlers can map it to a status by kind.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/bloom/internal/apperror"
)

// Invalidator drops cached renderings of the given page paths after a
// mutation. InvalidateAll is for changes that can show up on any page, such
// as a member's name.
type Invalidator interface {
	Invalidate(paths ...string)
	InvalidateAll()
}

// NopInvalidator is used when page caching is off.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(...string) {}

func (NopInvalidator) InvalidateAll() {}

// newValidator reports fields by their json name so messages match the
// request body the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterAlias("caption_max", "max="+strconv.Itoa(MaxCaptionLength))
	v.RegisterAlias("comment_max", "max="+strconv.Itoa(MaxCommentLength))
	return v
}

// fieldMessages holds the user-facing wording for "<field>.<tag>" failures.
// Aliased tags are looked up by the tag they expand to.
var fieldMessages = map[string]string{
	"caption.required":  "Caption is required.",
	"caption.max":       "Caption is too long.",
	"category.required": "Please select a category.",
	"category.oneof":    "Please select a category.",
	"text.required":     "Comment cannot be empty.",
	"text.max":          "Comment is too long.",
	"feedback.required": "Feedback must be at least 10 characters.",
	"feedback.min":      "Feedback must be at least 10 characters.",
	"feedback.max":      "Feedback is too long.",
	"userId.required":   "You must be signed in.",
	"postId.required":   "Post ID is required.",
}

// validate runs struct tag validation and converts the first failure into a
// validation AppError.
func validate(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := verrs[0]
	if msg, ok := fieldMessages[fe.Field()+"."+fe.ActualTag()]; ok {
		return apperror.ValidationFailed(fe.Field(), msg)
	}
	return apperror.ValidationFailed(fe.Field(), fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag()))
}
