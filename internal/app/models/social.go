package models

import (
	"time"
)

// Favorite bookmarks a summary or a tool for a user. Exactly one of
// SummaryID and ToolID is set.
type Favorite struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	SummaryID *int64    `json:"summaryId,omitempty" db:"summary_id"`
	ToolID    *int64    `json:"toolId,omitempty" db:"tool_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Summary   *Summary  `json:"summary,omitempty"`
	Tool      *Tool     `json:"tool,omitempty"`
}

// Message is a direct message between two users
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	ReceiverID int64     `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	Sender     *UserRef  `json:"sender,omitempty"`
	Receiver   *UserRef  `json:"receiver,omitempty"`
}

// Conversation summarizes the thread between the viewer and one partner
type Conversation struct {
	Partner     UserRef  `json:"partner"`
	LastMessage *Message `json:"lastMessage"`
	UnreadCount int64    `json:"unreadCount"`
}

// NotificationType classifies notifications
type NotificationType string

const (
	NotificationMessage  NotificationType = "MESSAGE"
	NotificationComment  NotificationType = "COMMENT"
	NotificationReply    NotificationType = "REPLY"
	NotificationRating   NotificationType = "RATING"
	NotificationAnswered NotificationType = "ANSWERED"
	NotificationSystem   NotificationType = "SYSTEM"
)

// Notification is an in-app alert for one user
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Link      *string          `json:"link,omitempty" db:"link"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// HelpRequestStatus is open or closed
type HelpRequestStatus string

const (
	HelpRequestOpen   HelpRequestStatus = "open"
	HelpRequestClosed HelpRequestStatus = "closed"
)

// HelpRequest asks peers for help with a course
type HelpRequest struct {
	ID        int64             `json:"id" db:"id"`
	Title     string            `json:"title" db:"title"`
	Details   string            `json:"details" db:"details"`
	Status    HelpRequestStatus `json:"status" db:"status"`
	CourseID  int64             `json:"courseId" db:"course_id"`
	AuthorID  int64             `json:"authorId" db:"author_id"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt" db:"updated_at"`
	Course    *CourseRef        `json:"course,omitempty"`
	Author    *UserRef          `json:"author,omitempty"`
}

// ReportStatus tracks moderation progress
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// Valid reports whether s is a known report status
func (s ReportStatus) Valid() bool {
	return s == ReportPending || s == ReportReviewed || s == ReportResolved
}

// Report flags a forum post for moderation
type Report struct {
	ID         int64        `json:"id" db:"id"`
	PostID     int64        `json:"postId" db:"post_id"`
	ReporterID int64        `json:"reporterId" db:"reporter_id"`
	Reason     string       `json:"reason" db:"reason"`
	Status     ReportStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
	Reporter   *UserRef     `json:"reporter,omitempty"`
	PostTitle  string       `json:"postTitle,omitempty"`
}

// Subscription follows a forum post for comment notifications
type Subscription struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	PostID    int64     `json:"postId" db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	PostTitle string    `json:"postTitle,omitempty"`
}

// SiteStats are public totals shown on the landing page
type SiteStats struct {
	Summaries  int64 `json:"summaries"`
	ForumPosts int64 `json:"forumPosts"`
	Tools      int64 `json:"tools"`
	Users      int64 `json:"users"`
}

// RefreshToken is a stored opaque refresh token
type RefreshToken struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	IsRevoked bool      `db:"is_revoked"`
	CreatedAt time.Time `db:"created_at"`
}

// OneTimeTokenKind distinguishes password reset and email verification tokens
type OneTimeTokenKind string

const (
	TokenPasswordReset     OneTimeTokenKind = "password_reset"
	TokenEmailVerification OneTimeTokenKind = "email_verification"
)

// OneTimeToken is a single-use token mailed to the user
type OneTimeToken struct {
	ID        int64            `db:"id"`
	UserID    int64            `db:"user_id"`
	Kind      OneTimeTokenKind `db:"kind"`
	Token     string           `db:"token"`
	ExpiresAt time.Time        `db:"expires_at"`
	UsedAt    *time.Time       `db:"used_at"`
}
