package model

import "strings"

// Category is one of the fixed post categories.
type Category string

const (
	CategoryAll         Category = "All" // virtual: matches every post
	CategoryPainting    Category = "Painting"
	CategoryPhotography Category = "Photography"
	CategoryWriting     Category = "Writing"
	CategoryMusic       Category = "Music"
	CategoryCrafts      Category = "Crafts"
)

// Categories lists the categories a post can belong to, in display order.
var Categories = []Category{
	CategoryPainting,
	CategoryPhotography,
	CategoryWriting,
	CategoryMusic,
	CategoryCrafts,
}

// BrowseCategories is Categories prefixed with the virtual All entry.
var BrowseCategories = append([]Category{CategoryAll}, Categories...)

// ParseCategory resolves a name or URL slug case-insensitively. The virtual
// All category is accepted.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range BrowseCategories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Slug is the lower-case form used in /category/<slug> paths.
func (c Category) Slug() string {
	return strings.ToLower(string(c))
}

// Assignable reports whether a post may be created in c.
func (c Category) Assignable() bool {
	for _, a := range Categories {
		if a == c {
			return true
		}
	}
	return false
}

// Matches reports whether a post in category post belongs on c's page.
func (c Category) Matches(post Category) bool {
	return c == CategoryAll || c == "" || strings.EqualFold(string(c), string(post))
}
