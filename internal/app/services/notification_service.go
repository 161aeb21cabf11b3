package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/websocket"
)

// latestNotificationsLimit caps the notification list
const latestNotificationsLimit = 50

// Notifier creates notifications on behalf of other services
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind models.NotificationType, title, message string, link *string) error
}

// NotificationService defines the interface for notification operations
type NotificationService interface {
	Notifier
	Latest(ctx context.Context, actor *appauth.Actor) (*dto.NotificationsResponse, error)
	UnreadCount(ctx context.Context, actor *appauth.Actor) (int64, error)
	MarkRead(ctx context.Context, actor *appauth.Actor, id int64) error
	MarkAllRead(ctx context.Context, actor *appauth.Actor) error
	Delete(ctx context.Context, actor *appauth.Actor, id int64) error
}

type notificationServiceImpl struct {
	repo      NotificationStore
	publisher EventPublisher
	logger    zerolog.Logger
}

// NewNotificationService creates a NotificationService. publisher may be nil.
func NewNotificationService(repo NotificationStore, publisher EventPublisher, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{repo: repo, publisher: publisher, logger: logger}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID int64, kind models.NotificationType, title, message string, link *string) error {
	n := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, websocket.EventNotification, n)
	}
	return nil
}

func (s *notificationServiceImpl) Latest(ctx context.Context, actor *appauth.Actor) (*dto.NotificationsResponse, error) {
	items, err := s.repo.Latest(ctx, actor.UserID, latestNotificationsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &dto.NotificationsResponse{Notifications: items, UnreadCount: unread}, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, actor *appauth.Actor) (int64, error) {
	return s.repo.UnreadCount(ctx, actor.UserID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor *appauth.Actor, id int64) error {
	return s.repo.MarkRead(ctx, actor.UserID, id)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, actor *appauth.Actor) error {
	return s.repo.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationServiceImpl) Delete(ctx context.Context, actor *appauth.Actor, id int64) error {
	return s.repo.Delete(ctx, actor.UserID, id)
}

// notifyQuietly sends a notification and only logs failures. Notifications
// never fail the operation that triggered them.
func notifyQuietly(ctx context.Context, n Notifier, logger zerolog.Logger, userID int64, kind models.NotificationType, title, message, link string) {
	if n == nil {
		return
	}
	var l *string
	if link != "" {
		l = &link
	}
	if err := n.Notify(ctx, userID, kind, title, message, l); err != nil {
		logger.Warn().Err(err).Int64("userID", userID).Str("type", string(kind)).Msg("Failed to send notification")
	}
}
