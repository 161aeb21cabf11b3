package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

func newEngagementFixture() (*mockEngagementStore, *mockSubscriptionStore, *recordingNotifier, EngagementService) {
	store := newMockEngagementStore()
	subs := &mockSubscriptionStore{subs: map[int64][]int64{}}
	notifier := &recordingNotifier{}
	svc := NewEngagementService(store, subs, notifier, zerolog.Nop())
	return store, subs, notifier, svc
}

func actor(id int64) *appauth.Actor {
	return &appauth.Actor{UserID: id, Email: "user@example.com", Role: models.RoleUser}
}

func TestRate_AverageIsMeanOfStoredRatings(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetSummary, 1, 99, "אינפי 1")

	resp, err := svc.Rate(ctx, actor(1), models.TargetSummary, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, *resp.AvgRating)
	assert.Equal(t, 1, resp.TotalRatings)

	// same user re-rates; last write wins
	resp, err = svc.Rate(ctx, actor(1), models.TargetSummary, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *resp.AvgRating)
	assert.Equal(t, 1, resp.TotalRatings)

	resp, err = svc.Rate(ctx, actor(2), models.TargetSummary, 1, 4)
	require.NoError(t, err)
	require.NotNil(t, resp.AvgRating)
	assert.Equal(t, 3.5, *resp.AvgRating)
	assert.Equal(t, 2, resp.TotalRatings)
	assert.Equal(t, 4, resp.Rating)
	assert.Equal(t, int64(3), resp.Version)
}

func TestRate_RejectsOutOfRangeWithoutChangingState(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetTool, 7, 99, "Anki")

	_, err := svc.Rate(ctx, actor(1), models.TargetTool, 7, 4)
	require.NoError(t, err)

	for _, v := range []int{0, 6, -3, 100} {
		_, err := svc.Rate(ctx, actor(1), models.TargetTool, 7, v)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	}

	agg, err := store.Aggregate(ctx, models.TargetTool, 7)
	require.NoError(t, err)
	assert.Equal(t, 4.0, *agg.Average)
	assert.Equal(t, 1, agg.Count)
	assert.Equal(t, int64(1), agg.Version)
}

func TestRate_MissingTargetAndAnonymous(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetForumPost, 3, 99, "שאלה")

	_, err := svc.Rate(ctx, actor(1), models.TargetForumPost, 404, 5)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, err, apperrors.ErrForumPostNotFound)

	_, err = svc.Rate(ctx, nil, models.TargetForumPost, 3, 5)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	agg, err := store.Aggregate(ctx, models.TargetForumPost, 3)
	require.NoError(t, err)
	assert.Nil(t, agg.Average)
	assert.Zero(t, agg.Count)
}

func TestRate_NotifiesOwnerButNotSelf(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, svc := newEngagementFixture()
	store.addTarget(models.TargetSummary, 1, 10, "סיכום")

	_, err := svc.Rate(ctx, actor(10), models.TargetSummary, 1, 5)
	require.NoError(t, err)
	assert.Empty(t, notifier.recipients(models.NotificationRating))

	_, err = svc.Rate(ctx, actor(11), models.TargetSummary, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, notifier.recipients(models.NotificationRating))
}

func TestRatings_ViewerRating(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetSummary, 1, 99, "סיכום")

	_, err := svc.Rate(ctx, actor(1), models.TargetSummary, 1, 2)
	require.NoError(t, err)

	resp, err := svc.Ratings(ctx, nil, models.TargetSummary, 1)
	require.NoError(t, err)
	assert.Nil(t, resp.UserRating)
	assert.Len(t, resp.Ratings, 1)
	assert.Equal(t, 2.0, *resp.AvgRating)

	resp, err = svc.Ratings(ctx, actor(1), models.TargetSummary, 1)
	require.NoError(t, err)
	require.NotNil(t, resp.UserRating)
	assert.Equal(t, 2, *resp.UserRating)

	resp, err = svc.Ratings(ctx, actor(2), models.TargetSummary, 1)
	require.NoError(t, err)
	assert.Nil(t, resp.UserRating)

	_, err = svc.Ratings(ctx, nil, models.TargetSummary, 2)
	assert.ErrorIs(t, err, apperrors.ErrSummaryNotFound)
}

func TestComment_RejectsBlankText(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetSummary, 1, 99, "סיכום")

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.Comment(ctx, actor(1), models.TargetSummary, 1, text)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	}

	comments, err := svc.Comments(ctx, models.TargetSummary, 1)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestComment_AppendsInOrder(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetSummary, 1, 99, "סיכום")

	first, err := svc.Comment(ctx, actor(1), models.TargetSummary, 1, "ראשון")
	require.NoError(t, err)
	last, err := svc.Comment(ctx, actor(2), models.TargetSummary, 1, "  תודה רבה!  ")
	require.NoError(t, err)

	assert.Equal(t, "תודה רבה!", last.Text)
	assert.Equal(t, int64(2), last.AuthorID)
	assert.NotNil(t, last.Author)
	assert.False(t, last.CreatedAt.IsZero())

	comments, err := svc.Comments(ctx, models.TargetSummary, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, last.ID, comments[1].ID)
}

func TestComment_TargetChecks(t *testing.T) {
	ctx := context.Background()
	store, _, _, svc := newEngagementFixture()
	store.addTarget(models.TargetTool, 1, 99, "כלי")

	_, err := svc.Comment(ctx, actor(1), models.TargetSummary, 5, "שלום")
	assert.ErrorIs(t, err, apperrors.ErrSummaryNotFound)

	_, err = svc.Comment(ctx, actor(1), models.TargetTool, 1, "שלום")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Comment(ctx, nil, models.TargetSummary, 5, "שלום")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Comments(ctx, models.TargetForumPost, 8)
	assert.ErrorIs(t, err, apperrors.ErrForumPostNotFound)
}

func TestComment_NotifiesOwnerAndSubscribers(t *testing.T) {
	ctx := context.Background()
	store, subs, notifier, svc := newEngagementFixture()
	store.addTarget(models.TargetForumPost, 4, 10, "עזרה בלינארית")
	subs.subs[4] = []int64{10, 11, 12}

	_, err := svc.Comment(ctx, actor(12), models.TargetForumPost, 4, "הנה פתרון")
	require.NoError(t, err)

	assert.Equal(t, []int64{10}, notifier.recipients(models.NotificationComment))
	assert.Equal(t, []int64{11}, notifier.recipients(models.NotificationReply))
}
