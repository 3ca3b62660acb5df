// Package view shapes posts for the server-rendered pages and renders the
// HTML templates.
package view

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sakif/bloom/internal/model"
)

// JustNow is shown for posts and comments the store has no time for.
const JustNow = "Just now"

// FormatDate renders a timestamp as "January 2, 2006" in UTC.
func FormatDate(ts *model.Timestamp) string {
	if ts == nil {
		return JustNow
	}
	return ts.Time().Format("January 2, 2006")
}

// Initials returns the first letter of every word in name, used when an
// avatar image is missing.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// CategoryTitle turns a URL slug into a heading: "music" → "Music".
func CategoryTitle(slug string) string {
	if c, ok := model.ParseCategory(slug); ok {
		return string(c)
	}
	r, size := utf8.DecodeRuneInString(slug)
	if r == utf8.RuneError {
		return slug
	}
	return string(unicode.ToUpper(r)) + slug[size:]
}

// Section is one row of the home page.
type Section struct {
	Title string
	Slug  string
	Posts []model.Post
}

// HomeSections groups the feed by category in browse order. The All row is
// titled "Popular"; categories with no posts are left out.
func HomeSections(posts []model.Post) []Section {
	var sections []Section
	for _, c := range model.BrowseCategories {
		var matched []model.Post
		for _, p := range posts {
			if c.Matches(p.Category) {
				matched = append(matched, p)
			}
		}
		if len(matched) == 0 {
			continue
		}

		title := string(c)
		if c == model.CategoryAll {
			title = "Popular"
		}
		sections = append(sections, Section{Title: title, Slug: c.Slug(), Posts: matched})
	}
	return sections
}
