package view

import "github.com/sakif/bloom/internal/model"

type HomeContent struct {
	Featured []model.FeaturedPost
	Sections []Section
}

type CategoryContent struct {
	Title string
	Posts []model.Post
}

type ProfileContent struct {
	User  model.User
	Posts []model.Post
}

type PostContent struct {
	Post model.Post
}

// NotFoundContent backs the "Post not found" and "User not found" pages.
type NotFoundContent struct {
	Heading string
	Message string
}
