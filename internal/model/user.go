// Package model defines the data structures used throughout the application.
package model

import "time"

// UnknownUserID is the id of the placeholder substituted for missing users.
const UnknownUserID = "unknown"

// User is the view of an account attached to posts and comments.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// UnknownUser returns the placeholder shown when a post or comment refers to
// a user record that does not exist.
func UnknownUser() User {
	return User{ID: UnknownUserID, Name: "Unknown User"}
}

// UserRecord is a document in the users collection, keyed by the id the
// identity provider assigned (UID).
//
// GitHub accounts get the UID "gh<githubID>" so repeated logins land on the
// same record regardless of which store backend is active.
type UserRecord struct {
	UID         string    `json:"uid"         bson:"_id"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	PhotoURL    string    `json:"photoURL"    bson:"photoURL"`
	Bio         string    `json:"bio"         bson:"bio"`
	Email       string    `json:"email"       bson:"email"` // may be empty when hidden by the provider
	CreatedAt   time.Time `json:"createdAt"   bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"   bson:"updatedAt"`
}

// View converts the stored record into the shape used by posts and pages.
func (r UserRecord) View() User {
	return User{
		ID:     r.UID,
		Name:   r.DisplayName,
		Avatar: r.PhotoURL,
		Bio:    r.Bio,
	}
}
