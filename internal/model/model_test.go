package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"painting", CategoryPainting, true},
		{"PHOTOGRAPHY", CategoryPhotography, true},
		{" Crafts ", CategoryCrafts, true},
		{"all", CategoryAll, true},
		{"sculpture", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryAssignableAndMatches(t *testing.T) {
	assert.True(t, CategoryMusic.Assignable())
	assert.False(t, CategoryAll.Assignable())
	assert.False(t, Category("Sculpture").Assignable())

	assert.True(t, CategoryAll.Matches(CategoryWriting))
	assert.True(t, CategoryWriting.Matches("writing"))
	assert.False(t, CategoryWriting.Matches(CategoryMusic))
	assert.Equal(t, "photography", CategoryPhotography.Slug())
}

func TestTimestamp(t *testing.T) {
	assert.Nil(t, NewTimestamp(time.Time{}), "zero time is a missing timestamp")

	now := time.Date(2024, 5, 17, 10, 30, 0, 123456789, time.UTC)
	ts := NewTimestamp(now)
	assert.Equal(t, now.Unix(), ts.Seconds)
	assert.Equal(t, int32(123456789), ts.Nanoseconds)
	assert.True(t, now.Equal(ts.Time()))

	var missing *Timestamp
	assert.True(t, missing.Time().IsZero())
}

func TestPostRecordUserIDs(t *testing.T) {
	p := PostRecord{
		UserID: "u1",
		Comments: []CommentRecord{
			{UserID: "u2"},
			{UserID: "u1"},
		},
	}
	assert.Equal(t, []string{"u1", "u2", "u1"}, p.UserIDs())
}

func TestUnknownUser(t *testing.T) {
	assert.Equal(t, User{ID: "unknown", Name: "Unknown User", Avatar: "", Bio: ""}, UnknownUser())
}
