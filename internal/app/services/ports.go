package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/filestorage"
)

// Storage contracts the services depend on. The concrete types live in the
// repositories package; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	SetEmailVerified(ctx context.Context, userID int64) error
	UpdateProfilePicture(ctx context.Context, userID int64, url string) error
	UpdateRole(ctx context.Context, userID int64, role models.Role) error
	Delete(ctx context.Context, id int64) error
	Counts(ctx context.Context, userID int64) (models.UserCounts, error)
	AverageReceivedRating(ctx context.Context, userID int64) (*float64, error)
	ListWithCounts(ctx context.Context) ([]repositories.UserWithCounts, error)
}

type TokenStore interface {
	CreateRefreshToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	CreateOneTimeToken(ctx context.Context, t *models.OneTimeToken) error
	GetOneTimeToken(ctx context.Context, token string, kind models.OneTimeTokenKind) (*models.OneTimeToken, error)
	MarkOneTimeTokenUsed(ctx context.Context, id int64) error
}

type CourseStore interface {
	List(ctx context.Context, f repositories.CourseFilter) ([]models.Course, error)
	Institutions(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, c *models.Course) error
	Delete(ctx context.Context, id int64) error
}

type SummaryStore interface {
	List(ctx context.Context, f repositories.SummaryFilter) ([]models.Summary, error)
	GetByID(ctx context.Context, id int64) (*models.Summary, error)
	Create(ctx context.Context, s *models.Summary) error
	Update(ctx context.Context, s *models.Summary) error
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) error
}

type ForumStore interface {
	List(ctx context.Context, f repositories.ForumFilter) ([]models.ForumPost, error)
	GetByID(ctx context.Context, id int64) (*models.ForumPost, error)
	Create(ctx context.Context, p *models.ForumPost) error
	Update(ctx context.Context, p *models.ForumPost) error
	SetAnswered(ctx context.Context, id int64, answered bool) error
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
}

type ToolStore interface {
	List(ctx context.Context, addedBy *int64) ([]models.Tool, error)
	GetByID(ctx context.Context, id int64) (*models.Tool, error)
	Create(ctx context.Context, t *models.Tool) error
	Update(ctx context.Context, t *models.Tool) error
	Delete(ctx context.Context, id int64) error
}

type EngagementStore interface {
	Rate(ctx context.Context, target models.TargetType, targetID, userID int64, value int) (models.RatingAggregate, error)
	Aggregate(ctx context.Context, target models.TargetType, targetID int64) (models.RatingAggregate, error)
	Target(ctx context.Context, target models.TargetType, targetID int64) (repositories.TargetInfo, error)
	Ratings(ctx context.Context, target models.TargetType, targetID int64) ([]models.Rating, error)
	UserRating(ctx context.Context, target models.TargetType, targetID, userID int64) (*int, error)
	AddComment(ctx context.Context, c *models.Comment) error
	Comments(ctx context.Context, target models.TargetType, targetID int64) ([]models.Comment, error)
}

type FavoriteStore interface {
	List(ctx context.Context, userID int64) ([]models.Favorite, error)
	Add(ctx context.Context, f *models.Favorite) error
	Remove(ctx context.Context, userID int64, target models.TargetType, targetID int64) error
	FavoriteIDs(ctx context.Context, userID int64, target models.TargetType) (map[int64]bool, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	Conversation(ctx context.Context, userID, partnerID int64) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, userID, partnerID int64) error
	Conversations(ctx context.Context, userID int64) ([]models.Conversation, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Latest(ctx context.Context, userID int64, limit uint64) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID, id int64) error
}

type HelpRequestStore interface {
	List(ctx context.Context, courseID *int64, status models.HelpRequestStatus) ([]models.HelpRequest, error)
	GetByID(ctx context.Context, id int64) (*models.HelpRequest, error)
	Create(ctx context.Context, h *models.HelpRequest) error
	UpdateStatus(ctx context.Context, id int64, status models.HelpRequestStatus) error
	Delete(ctx context.Context, id int64) error
}

type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	List(ctx context.Context, status models.ReportStatus) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id int64, status models.ReportStatus) error
}

type SubscriptionStore interface {
	Create(ctx context.Context, s *models.Subscription) error
	Delete(ctx context.Context, userID, postID int64) error
	ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error)
	Subscribers(ctx context.Context, postID int64) ([]int64, error)
}

type StatsStore interface {
	Totals(ctx context.Context) (models.SiteStats, error)
}

// FileStore is the subset of filestorage.FileStorage the services use
type FileStore interface {
	Save(ctx context.Context, fileHeader *multipart.FileHeader, folder, prefix string) (*filestorage.StoredFile, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	LocalPath(key string) (string, bool)
}

// Cache is the JSON cache used for public counters; a nil Cache disables caching
type Cache interface {
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
}

// TokenRevoker blacklists access tokens until they expire
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// EventPublisher pushes realtime events to a user's open connections
type EventPublisher interface {
	Publish(userID int64, eventType string, payload any)
}
