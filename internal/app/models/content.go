package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Summary is an uploaded study document attached to a course
type Summary struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   *string    `json:"description,omitempty" db:"description"`
	FilePath      string     `json:"filePath" db:"file_path"`
	FileKey       string     `json:"-" db:"file_key"`
	CourseID      int64      `json:"courseId" db:"course_id"`
	UploadedByID  int64      `json:"uploadedById" db:"uploaded_by_id"`
	AvgRating     *float64   `json:"avgRating" db:"avg_rating"`
	RatingCount   int        `json:"ratingCount" db:"rating_count"`
	RatingVersion int64      `json:"ratingVersion" db:"rating_version"`
	Views         int64      `json:"views" db:"views"`
	Downloads     int64      `json:"downloads" db:"downloads"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	Course        *CourseRef `json:"course,omitempty"`
	UploadedBy    *UserRef   `json:"uploadedBy,omitempty"`
}

// FileType is the lower-case extension of the stored document
func (s *Summary) FileType() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(s.FilePath)), ".")
}

// DescriptionText returns the description or ""
func (s *Summary) DescriptionText() string {
	if s.Description == nil {
		return ""
	}
	return *s.Description
}

// ForumPost is a question or discussion thread
type ForumPost struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Content       string     `json:"content" db:"content"`
	Category      *string    `json:"category,omitempty" db:"category"`
	Tags          []string   `json:"tags" db:"tags"`
	Images        []string   `json:"images" db:"images"`
	IsUrgent      bool       `json:"isUrgent" db:"is_urgent"`
	IsAnswered    bool       `json:"isAnswered" db:"is_answered"`
	Views         int64      `json:"views" db:"views"`
	CourseID      int64      `json:"courseId" db:"course_id"`
	AuthorID      int64      `json:"authorId" db:"author_id"`
	AvgRating     *float64   `json:"avgRating" db:"avg_rating"`
	RatingCount   int        `json:"ratingCount" db:"rating_count"`
	RatingVersion int64      `json:"ratingVersion" db:"rating_version"`
	CommentCount  int64      `json:"commentCount"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	Course        *CourseRef `json:"course,omitempty"`
	Author        *UserRef   `json:"author,omitempty"`
}

// CategoryName returns the category or ""
func (p *ForumPost) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// Tool is a shared link to an external study resource
type Tool struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	URL           string    `json:"url" db:"url"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Category      *string   `json:"category,omitempty" db:"category"`
	AddedByID     int64     `json:"addedById" db:"added_by_id"`
	AvgRating     *float64  `json:"avgRating" db:"avg_rating"`
	RatingCount   int       `json:"ratingCount" db:"rating_count"`
	RatingVersion int64     `json:"ratingVersion" db:"rating_version"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
	AddedBy       *UserRef  `json:"addedBy,omitempty"`
}

// CategoryName returns the category or ""
func (t *Tool) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// DescriptionText returns the description or ""
func (t *Tool) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
