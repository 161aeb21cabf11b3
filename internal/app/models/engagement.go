package models

import (
	"time"
)

// TargetType identifies a kind of content that can be rated or commented on
type TargetType string

const (
	TargetSummary   TargetType = "summary"
	TargetForumPost TargetType = "forum_post"
	TargetTool      TargetType = "tool"
)

// Valid reports whether t is a known target type
func (t TargetType) Valid() bool {
	switch t {
	case TargetSummary, TargetForumPost, TargetTool:
		return true
	}
	return false
}

// Commentable reports whether the target type accepts comments
func (t TargetType) Commentable() bool {
	return t == TargetSummary || t == TargetForumPost
}

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether v is an allowed star value
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// Rating is one user's score for one target. There is at most one per
// (target type, target id, user).
type Rating struct {
	ID         int64      `json:"id" db:"id"`
	TargetType TargetType `json:"targetType" db:"target_type"`
	TargetID   int64      `json:"targetId" db:"target_id"`
	UserID     int64      `json:"userId" db:"user_id"`
	Rating     int        `json:"rating" db:"rating"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	User       *UserRef   `json:"user,omitempty"`
}

// RatingAggregate is the derived score of a target. Average is nil when
// nobody has rated the target yet.
type RatingAggregate struct {
	Average *float64 `json:"avgRating"`
	Count   int      `json:"totalRatings"`
	Version int64    `json:"version"`
}

// NewRatingAggregate computes the arithmetic mean of values
func NewRatingAggregate(values []int) RatingAggregate {
	if len(values) == 0 {
		return RatingAggregate{}
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := float64(sum) / float64(len(values))
	return RatingAggregate{Average: &avg, Count: len(values)}
}

// Comment is an append-only remark on a target
type Comment struct {
	ID         int64      `json:"id" db:"id"`
	TargetType TargetType `json:"targetType" db:"target_type"`
	TargetID   int64      `json:"targetId" db:"target_id"`
	AuthorID   int64      `json:"authorId" db:"author_id"`
	Text       string     `json:"text" db:"text"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	Author     *UserRef   `json:"author,omitempty"`
}
