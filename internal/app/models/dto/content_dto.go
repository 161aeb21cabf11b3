package dto

import (
	"github.com/studyhub-il/studyhub/internal/app/models"
)

// CreateCourseRequest adds a course to the catalog
type CreateCourseRequest struct {
	CourseCode  string  `json:"courseCode" binding:"required,max=64" example:"COURSE22"`
	CourseName  string  `json:"courseName" binding:"required,max=255" example:"אלגוריתמים מתקדמים"`
	Institution string  `json:"institution" binding:"omitempty,max=255"`
	Semester    *string `json:"semester" binding:"omitempty,max=64"`
}

// CourseDetailResponse is a course with its latest content
type CourseDetailResponse struct {
	*models.Course
	Summaries  []models.Summary   `json:"summaries"`
	ForumPosts []models.ForumPost `json:"forumPosts"`
}

// ListParams are the query parameters shared by content listings
type ListParams struct {
	Search      string `form:"search"`
	Category    string `form:"category"`
	CourseID    int64  `form:"courseId"`
	Institution string `form:"institution"`
	FileType    string `form:"fileType"`
	Window      string `form:"window"`
	SortBy      string `form:"sortBy"`
	Answered    string `form:"answered"`
	Mine        bool   `form:"mine"`
}

// CreateSummaryRequest is the form part of a summary upload
type CreateSummaryRequest struct {
	Title       string  `form:"title" binding:"required,min=3,max=255"`
	Description *string `form:"description" binding:"omitempty,max=5000"`
	CourseID    int64   `form:"courseId" binding:"required,min=1"`
}

// UpdateSummaryRequest edits summary metadata; omitted fields are unchanged
type UpdateSummaryRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	CourseID    *int64  `json:"courseId" binding:"omitempty,min=1"`
}

// SummaryItem is a summary in a listing
type SummaryItem struct {
	models.Summary
	FileType   string `json:"fileType"`
	IsFavorite bool   `json:"isFavorite"`
}

// SummaryDetailResponse is a single summary with its engagement
type SummaryDetailResponse struct {
	SummaryItem
	Ratings    []models.Rating  `json:"ratings"`
	UserRating *int             `json:"userRating"`
	Comments   []models.Comment `json:"comments"`
}

// CreateForumPostRequest is the form part of a new forum post
type CreateForumPostRequest struct {
	Title    string  `form:"title" binding:"required,min=5,max=255"`
	Content  string  `form:"content" binding:"required,min=10,max=20000"`
	CourseID int64   `form:"courseId" binding:"required,min=1"`
	Category *string `form:"category" binding:"omitempty,max=64"`
	// Tags is a JSON array or a comma separated list
	Tags     string `form:"tags"`
	IsUrgent bool   `form:"isUrgent"`
}

// UpdateForumPostRequest edits a forum post; omitted fields are unchanged
type UpdateForumPostRequest struct {
	Title    *string  `json:"title" binding:"omitempty,min=5,max=255"`
	Content  *string  `json:"content" binding:"omitempty,min=10,max=20000"`
	CourseID *int64   `json:"courseId" binding:"omitempty,min=1"`
	Category *string  `json:"category" binding:"omitempty,max=64"`
	Tags     []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	IsUrgent *bool    `json:"isUrgent"`
}

// MarkAnsweredRequest toggles the answered flag; omitted means answered
type MarkAnsweredRequest struct {
	IsAnswered *bool `json:"isAnswered"`
}

// ForumPostDetailResponse is a forum post with its engagement
type ForumPostDetailResponse struct {
	*models.ForumPost
	Ratings      []models.Rating  `json:"ratings"`
	UserRating   *int             `json:"userRating"`
	Comments     []models.Comment `json:"comments"`
	IsSubscribed bool             `json:"isSubscribed"`
}

// CreateToolRequest shares a study tool
type CreateToolRequest struct {
	Title       string  `json:"title" binding:"required,min=2,max=255"`
	URL         string  `json:"url" binding:"required,httpurl,max=2000"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Category    *string `json:"category" binding:"omitempty,max=64"`
}

// UpdateToolRequest edits a tool; omitted fields are unchanged
type UpdateToolRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=2,max=255"`
	URL         *string `json:"url" binding:"omitempty,httpurl,max=2000"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Category    *string `json:"category" binding:"omitempty,max=64"`
}

// ToolItem is a tool with the caller's favorite flag
type ToolItem struct {
	models.Tool
	IsFavorite bool `json:"isFavorite"`
}
