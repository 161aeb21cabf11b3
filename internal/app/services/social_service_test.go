package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/websocket"
)

func int64Ptr(v int64) *int64 { return &v }

func TestFavorites_DuplicateAndIdempotentRemove(t *testing.T) {
	ctx := context.Background()
	store := newMockFavoriteStore()
	svc := NewFavoriteService(store, zerolog.Nop())
	u := actor(1)

	fav, err := svc.Add(ctx, u, dto.AddFavoriteRequest{SummaryID: int64Ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), fav.UserID)

	_, err = svc.Add(ctx, u, dto.AddFavoriteRequest{SummaryID: int64Ptr(7)})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyFavorite)

	// the same id as a tool is a different item, and another user may save it too
	_, err = svc.Add(ctx, u, dto.AddFavoriteRequest{ToolID: int64Ptr(7)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, actor(2), dto.AddFavoriteRequest{SummaryID: int64Ptr(7)})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, u, models.TargetSummary, 7))
	require.NoError(t, svc.Remove(ctx, u, models.TargetSummary, 7))
	require.NoError(t, svc.Remove(ctx, u, models.TargetSummary, 999))

	list, err := svc.List(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), *list[0].ToolID)
}

func TestFavorites_RequestValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoriteService(newMockFavoriteStore(), zerolog.Nop())

	_, err := svc.Add(ctx, actor(1), dto.AddFavoriteRequest{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = svc.Add(ctx, actor(1), dto.AddFavoriteRequest{SummaryID: int64Ptr(1), ToolID: int64Ptr(2)})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	assert.ErrorIs(t, svc.Remove(ctx, actor(1), models.TargetForumPost, 1), apperrors.ErrBadRequest)
}

func newMessageFixture(t *testing.T) (*mockMessageStore, *recordingNotifier, *recordingPublisher, MessageService) {
	t.Helper()
	users := newMockUserStore()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Email: "dana@example.com", FullName: "דנה"}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "yossi@example.com", FullName: "יוסי"}))

	store := &mockMessageStore{}
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	return store, notifier, publisher, NewMessageService(store, users, notifier, publisher, zerolog.Nop())
}

func TestMessageSend_PushesAndNotifies(t *testing.T) {
	ctx := context.Background()
	store, notifier, publisher, svc := newMessageFixture(t)

	msg, err := svc.Send(ctx, actor(1), dto.SendMessageRequest{ReceiverID: 2, Content: "  היי, יש לך את הסיכום?  "})
	require.NoError(t, err)
	assert.Equal(t, "היי, יש לך את הסיכום?", msg.Content)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, "דנה", msg.Sender.FullName)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, int64(2), publisher.events[0].userID)
	assert.Equal(t, websocket.EventMessage, publisher.events[0].eventType)
	assert.Same(t, msg, publisher.events[0].payload)

	assert.Equal(t, []int64{2}, notifier.recipients(models.NotificationMessage))
	assert.Len(t, store.messages, 1)
}

func TestMessageSend_Rejections(t *testing.T) {
	ctx := context.Background()
	store, notifier, publisher, svc := newMessageFixture(t)

	_, err := svc.Send(ctx, actor(1), dto.SendMessageRequest{ReceiverID: 1, Content: "לעצמי"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Send(ctx, actor(1), dto.SendMessageRequest{ReceiverID: 2, Content: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.Empty(t, store.messages)
	assert.Empty(t, publisher.events)
	assert.Empty(t, notifier.sent)
}

func TestMessageConversation_MarksIncomingRead(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newMessageFixture(t)

	_, err := svc.Send(ctx, actor(2), dto.SendMessageRequest{ReceiverID: 1, Content: "שאלה על המטלה"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, actor(1), dto.SendMessageRequest{ReceiverID: 2, Content: "בטח, מה השאלה?"})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, actor(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	thread, err := svc.Conversation(ctx, actor(1), 2)
	require.NoError(t, err)
	assert.Len(t, thread, 2)

	unread, err = svc.UnreadCount(ctx, actor(1))
	require.NoError(t, err)
	assert.Zero(t, unread)

	// the partner's own incoming message stays unread
	unread, err = svc.UnreadCount(ctx, actor(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	assert.False(t, store.messages[1].IsRead)

	_, err = svc.Conversation(ctx, actor(1), 99)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestHelpRequestStatus_OnlyAuthor(t *testing.T) {
	ctx := context.Background()
	store := &mockHelpRequestStore{requests: map[int64]*models.HelpRequest{}}
	svc := NewHelpRequestService(store, zerolog.Nop())

	h, err := svc.Create(ctx, actor(1), dto.CreateHelpRequestRequest{Title: "עזרה בחדו\"א", Details: "לא מבין אינטגרלים", CourseID: 3})
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestOpen, h.Status)

	_, err = svc.UpdateStatus(ctx, actor(2), h.ID, models.HelpRequestClosed)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	admin := actor(3)
	admin.Role = models.RoleAdmin
	_, err = svc.UpdateStatus(ctx, admin, h.ID, models.HelpRequestClosed)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, models.HelpRequestOpen, store.requests[h.ID].Status)

	closed, err := svc.UpdateStatus(ctx, actor(1), h.ID, models.HelpRequestClosed)
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestClosed, closed.Status)
	assert.Equal(t, models.HelpRequestClosed, store.requests[h.ID].Status)

	_, err = svc.UpdateStatus(ctx, actor(1), 42, models.HelpRequestOpen)
	assert.ErrorIs(t, err, apperrors.ErrHelpRequestNotFound)
}
