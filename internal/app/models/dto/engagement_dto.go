package dto

import "github.com/studyhub-il/studyhub/internal/app/models"

// RateRequest submits a 1-5 star rating. A pointer distinguishes a missing
// value from zero.
type RateRequest struct {
	Rating *int `json:"rating" binding:"required" example:"4"`
}

// RateResponse is the rater's value and the recomputed aggregate. Version
// increases with every rating write so clients can drop stale responses.
type RateResponse struct {
	Rating       int      `json:"rating" example:"4"`
	AvgRating    *float64 `json:"avgRating" example:"3.5"`
	TotalRatings int      `json:"totalRatings" example:"2"`
	Version      int64    `json:"version" example:"7"`
}

// RatingsResponse lists a target's ratings with its aggregate
type RatingsResponse struct {
	Ratings      []models.Rating `json:"ratings"`
	AvgRating    *float64        `json:"avgRating"`
	UserRating   *int            `json:"userRating"`
	TotalRatings int             `json:"totalRatings"`
	Version      int64           `json:"version"`
}

// CommentRequest adds a comment
type CommentRequest struct {
	Text string `json:"text" binding:"required,max=5000" example:"סיכום מצוין, תודה!"`
}
