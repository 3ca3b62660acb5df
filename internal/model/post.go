package model

import "time"

// Timestamp is the transport form of a creation time. A nil *Timestamp
// means the store had no time for the document.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// NewTimestamp converts t, returning nil for the zero time.
func NewTimestamp(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time converts back to a time.Time in UTC.
func (ts *Timestamp) Time() time.Time {
	if ts == nil {
		return time.Time{}
	}
	return time.Unix(ts.Seconds, int64(ts.Nanoseconds)).UTC()
}

// CommentRecord is a comment as embedded in a stored post.
type CommentRecord struct {
	ID        string    `json:"id"        bson:"id"`
	UserID    string    `json:"userId"    bson:"userId"`
	Text      string    `json:"text"      bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// PostRecord is a document in the posts collection. Comments are embedded
// in append order and go away with the post.
type PostRecord struct {
	ID        string          `json:"id"        bson:"_id"`
	UserID    string          `json:"userId"    bson:"userId"`
	Caption   string          `json:"caption"   bson:"caption"`
	Category  Category        `json:"category"  bson:"category"`
	ImageURL  string          `json:"imageUrl"  bson:"imageUrl"`
	Likes     int64           `json:"likes"     bson:"likes"`
	Comments  []CommentRecord `json:"comments"  bson:"comments"`
	CreatedAt time.Time       `json:"createdAt" bson:"createdAt"`
}

// UserIDs returns the owner id followed by every comment author id.
// Duplicates are kept.
func (p PostRecord) UserIDs() []string {
	ids := make([]string, 0, 1+len(p.Comments))
	ids = append(ids, p.UserID)
	for _, c := range p.Comments {
		ids = append(ids, c.UserID)
	}
	return ids
}

// Comment is the view of a comment with its author resolved.
type Comment struct {
	ID        string     `json:"id"`
	User      User       `json:"user"`
	Text      string     `json:"text"`
	CreatedAt *Timestamp `json:"createdAt"`
}

// Post is the view of a post with its owner and comment authors resolved.
type Post struct {
	ID        string     `json:"id"`
	User      User       `json:"user"`
	Caption   string     `json:"caption"`
	Category  Category   `json:"category"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	Likes     int64      `json:"likes"`
	Comments  []Comment  `json:"comments"`
	CreatedAt *Timestamp `json:"createdAt"`
}

// FeaturedPost is an entry in the homepage carousel.
type FeaturedPost struct {
	ID   string `json:"id"   bson:"_id"`
	Link string `json:"link" bson:"link"`
}

// Feedback is a message a visitor sent through the feedback dialog.
type Feedback struct {
	ID        string    `json:"id"               bson:"_id"`
	UserID    string    `json:"userId,omitempty" bson:"userId,omitempty"`
	Text      string    `json:"text"             bson:"text"`
	CreatedAt time.Time `json:"createdAt"        bson:"createdAt"`
}
