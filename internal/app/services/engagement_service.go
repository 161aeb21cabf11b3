package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// EngagementService rates and comments on summaries, forum posts and tools
type EngagementService interface {
	Rate(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64, rating int) (*dto.RateResponse, error)
	Ratings(ctx context.Context, viewer *appauth.Actor, target models.TargetType, targetID int64) (*dto.RatingsResponse, error)
	Comment(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64, text string) (*models.Comment, error)
	Comments(ctx context.Context, target models.TargetType, targetID int64) ([]models.Comment, error)
}

type engagementServiceImpl struct {
	repo          EngagementStore
	subscriptions SubscriptionStore
	notifier      Notifier
	logger        zerolog.Logger
}

// NewEngagementService creates an EngagementService. subscriptions and
// notifier may be nil, which disables comment notifications.
func NewEngagementService(repo EngagementStore, subscriptions SubscriptionStore, notifier Notifier, logger zerolog.Logger) EngagementService {
	return &engagementServiceImpl{
		repo:          repo,
		subscriptions: subscriptions,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *engagementServiceImpl) Rate(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64, rating int) (*dto.RateResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !target.Valid() {
		return nil, apperrors.NewBadRequestError("סוג תוכן לא מוכר")
	}
	if !models.ValidRating(rating) {
		return nil, apperrors.NewValidationError("rating", "הדירוג חייב להיות מספר שלם בין 1 ל-5")
	}

	agg, err := s.repo.Rate(ctx, target, targetID, actor.UserID, rating)
	if err != nil {
		return nil, fmt.Errorf("failed to rate %s %d: %w", target, targetID, err)
	}

	s.logger.Debug().
		Str("target", string(target)).
		Int64("targetID", targetID).
		Int64("userID", actor.UserID).
		Int("rating", rating).
		Int64("version", agg.Version).
		Msg("Rating stored")

	if info, err := s.repo.Target(ctx, target, targetID); err == nil && info.OwnerID != actor.UserID {
		notifyQuietly(ctx, s.notifier, s.logger, info.OwnerID, models.NotificationRating,
			"דירוג חדש", fmt.Sprintf("התוכן \"%s\" קיבל דירוג %d", info.Title, rating), targetLink(target, targetID))
	}

	return &dto.RateResponse{
		Rating:       rating,
		AvgRating:    agg.Average,
		TotalRatings: agg.Count,
		Version:      agg.Version,
	}, nil
}

func (s *engagementServiceImpl) Ratings(ctx context.Context, viewer *appauth.Actor, target models.TargetType, targetID int64) (*dto.RatingsResponse, error) {
	if !target.Valid() {
		return nil, apperrors.NewBadRequestError("סוג תוכן לא מוכר")
	}
	agg, err := s.repo.Aggregate(ctx, target, targetID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repo.Ratings(ctx, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	resp := &dto.RatingsResponse{
		Ratings:      ratings,
		AvgRating:    agg.Average,
		TotalRatings: agg.Count,
		Version:      agg.Version,
	}
	if viewer != nil {
		resp.UserRating, err = s.repo.UserRating(ctx, target, targetID, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load viewer rating: %w", err)
		}
	}
	return resp, nil
}

func (s *engagementServiceImpl) Comment(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64, text string) (*models.Comment, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !target.Commentable() {
		return nil, apperrors.NewBadRequestError("לא ניתן להגיב על תוכן מסוג זה")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text", "תוכן התגובה לא יכול להיות ריק")
	}

	comment := &models.Comment{
		TargetType: target,
		TargetID:   targetID,
		AuthorID:   actor.UserID,
		Text:       text,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.notifyCommented(ctx, actor, target, targetID)
	return comment, nil
}

// notifyCommented tells the owner and, for forum posts, every subscriber
// except the commenter that a new comment arrived.
func (s *engagementServiceImpl) notifyCommented(ctx context.Context, actor *appauth.Actor, target models.TargetType, targetID int64) {
	if s.notifier == nil {
		return
	}
	info, err := s.repo.Target(ctx, target, targetID)
	if err != nil {
		s.logger.Warn().Err(err).Str("target", string(target)).Int64("targetID", targetID).Msg("Failed to load comment target")
		return
	}

	link := targetLink(target, targetID)
	notified := map[int64]bool{actor.UserID: true}
	if !notified[info.OwnerID] {
		notifyQuietly(ctx, s.notifier, s.logger, info.OwnerID, models.NotificationComment,
			"תגובה חדשה", fmt.Sprintf("נוספה תגובה ל\"%s\"", info.Title), link)
		notified[info.OwnerID] = true
	}

	if target != models.TargetForumPost || s.subscriptions == nil {
		return
	}
	subscribers, err := s.subscriptions.Subscribers(ctx, targetID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("postID", targetID).Msg("Failed to load subscribers")
		return
	}
	for _, id := range subscribers {
		if notified[id] {
			continue
		}
		notified[id] = true
		notifyQuietly(ctx, s.notifier, s.logger, id, models.NotificationReply,
			"תשובה חדשה בדיון", fmt.Sprintf("נוספה תשובה לדיון \"%s\"", info.Title), link)
	}
}

func (s *engagementServiceImpl) Comments(ctx context.Context, target models.TargetType, targetID int64) ([]models.Comment, error) {
	if !target.Commentable() {
		return nil, apperrors.NewBadRequestError("לא ניתן להגיב על תוכן מסוג זה")
	}
	if _, err := s.repo.Target(ctx, target, targetID); err != nil {
		return nil, err
	}
	comments, err := s.repo.Comments(ctx, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// targetLink is the client route of a target
func targetLink(target models.TargetType, id int64) string {
	switch target {
	case models.TargetSummary:
		return fmt.Sprintf("/summaries/%d", id)
	case models.TargetForumPost:
		return fmt.Sprintf("/forum/%d", id)
	case models.TargetTool:
		return fmt.Sprintf("/tools/%d", id)
	}
	return ""
}
