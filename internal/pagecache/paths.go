package pagecache

import (
	"github.com/sakif/bloom/internal/model"
)

// HomePath is the feed page.
const HomePath = "/"

func CategoryPath(c model.Category) string { return "/category/" + c.Slug() }

func ProfilePath(userID string) string { return "/profile/" + userID }

func PostPath(postID string) string { return "/post/" + postID }

// PathsForPost lists the pages that show a post: the feed, the category
// pages it appears on, its owner's profile and its own page.
func PathsForPost(category model.Category, ownerID, postID string) []string {
	paths := []string{HomePath, CategoryPath(model.CategoryAll)}
	if category != "" && category != model.CategoryAll {
		paths = append(paths, CategoryPath(category))
	}
	if ownerID != "" {
		paths = append(paths, ProfilePath(ownerID))
	}
	if postID != "" {
		paths = append(paths, PostPath(postID))
	}
	return paths
}
