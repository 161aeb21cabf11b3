package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/websocket"
)

// previewLength is how much of a message the notification shows
const previewLength = 80

// MessageService handles direct messages between users
type MessageService interface {
	Conversations(ctx context.Context, actor *appauth.Actor) ([]models.Conversation, error)
	Conversation(ctx context.Context, actor *appauth.Actor, partnerID int64) ([]models.Message, error)
	Send(ctx context.Context, actor *appauth.Actor, req dto.SendMessageRequest) (*models.Message, error)
	UnreadCount(ctx context.Context, actor *appauth.Actor) (int64, error)
}

type messageServiceImpl struct {
	messages  MessageStore
	users     UserStore
	notifier  Notifier
	publisher EventPublisher
	logger    zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(messages MessageStore, users UserStore, notifier Notifier, publisher EventPublisher, logger zerolog.Logger) MessageService {
	return &messageServiceImpl{
		messages:  messages,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *messageServiceImpl) Conversations(ctx context.Context, actor *appauth.Actor) ([]models.Conversation, error) {
	return s.messages.Conversations(ctx, actor.UserID)
}

// Conversation returns the thread with partnerID and marks incoming messages read
func (s *messageServiceImpl) Conversation(ctx context.Context, actor *appauth.Actor, partnerID int64) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, partnerID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.Conversation(ctx, actor.UserID, partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.messages.MarkConversationRead(ctx, actor.UserID, partnerID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Failed to mark conversation read")
	}
	return msgs, nil
}

func (s *messageServiceImpl) Send(ctx context.Context, actor *appauth.Actor, req dto.SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "תוכן ההודעה לא יכול להיות ריק")
	}
	if req.ReceiverID == actor.UserID {
		return nil, apperrors.NewBadRequestError("לא ניתן לשלוח הודעה לעצמך")
	}
	sender, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: actor.UserID, ReceiverID: req.ReceiverID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.Sender = &models.UserRef{ID: sender.ID, FullName: sender.FullName, ProfilePicture: sender.ProfilePicture}

	if s.publisher != nil {
		s.publisher.Publish(req.ReceiverID, websocket.EventMessage, msg)
	}
	notifyQuietly(ctx, s.notifier, s.logger, req.ReceiverID, models.NotificationMessage,
		fmt.Sprintf("הודעה חדשה מ%s", sender.FullName), preview(content), fmt.Sprintf("/messages/%d", sender.ID))

	return msg, nil
}

func (s *messageServiceImpl) UnreadCount(ctx context.Context, actor *appauth.Actor) (int64, error) {
	return s.messages.UnreadCount(ctx, actor.UserID)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}
