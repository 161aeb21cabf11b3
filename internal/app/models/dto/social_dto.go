package dto

import "github.com/studyhub-il/studyhub/internal/app/models"

// AddFavoriteRequest bookmarks exactly one of a summary or a tool
type AddFavoriteRequest struct {
	SummaryID *int64 `json:"summaryId" binding:"omitempty,min=1"`
	ToolID    *int64 `json:"toolId" binding:"omitempty,min=1"`
}

// SendMessageRequest sends a direct message
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required,min=1"`
	Content    string `json:"content" binding:"required,notblank,max=5000"`
}

// CountResponse carries a single counter
type CountResponse struct {
	Count int64 `json:"count"`
}

// NotificationsResponse lists the latest notifications
type NotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// CreateHelpRequestRequest opens a help request
type CreateHelpRequestRequest struct {
	Title    string `json:"title" binding:"required,min=3,max=255"`
	Details  string `json:"details" binding:"required,notblank,max=5000"`
	CourseID int64  `json:"courseId" binding:"required,min=1"`
}

// UpdateHelpStatusRequest opens or closes a help request
type UpdateHelpStatusRequest struct {
	Status models.HelpRequestStatus `json:"status" binding:"required,oneof=open closed"`
}

// CreateReportRequest reports a forum post
type CreateReportRequest struct {
	PostID int64  `json:"postId" binding:"required,min=1"`
	Reason string `json:"reason" binding:"required,max=2000"`
}

// UpdateReportStatusRequest moves a report through moderation
type UpdateReportStatusRequest struct {
	Status models.ReportStatus `json:"status" binding:"required,oneof=pending reviewed resolved"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=USER ADMIN"`
}

// AdminStatsResponse is the admin dashboard
type AdminStatsResponse struct {
	models.SiteStats
	RecentSummaries []models.Summary `json:"recentSummaries"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
