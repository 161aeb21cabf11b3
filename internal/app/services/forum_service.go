package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/filestorage"
	"github.com/studyhub-il/studyhub/internal/pkg/listing"
)

const maxForumTags = 20

// ForumService manages forum posts
type ForumService interface {
	List(ctx context.Context, viewer *appauth.Actor, params dto.ListParams, page, size int) (*dto.PaginatedResponse[models.ForumPost], error)
	MyPosts(ctx context.Context, actor *appauth.Actor) ([]models.ForumPost, error)
	Get(ctx context.Context, viewer *appauth.Actor, id int64) (*dto.ForumPostDetailResponse, error)
	Create(ctx context.Context, actor *appauth.Actor, req dto.CreateForumPostRequest, images []*multipart.FileHeader) (*models.ForumPost, error)
	Update(ctx context.Context, actor *appauth.Actor, id int64, req dto.UpdateForumPostRequest) (*models.ForumPost, error)
	SetAnswered(ctx context.Context, actor *appauth.Actor, id int64, answered bool) (*models.ForumPost, error)
	Delete(ctx context.Context, actor *appauth.Actor, id int64) error
}

type forumServiceImpl struct {
	posts         ForumStore
	subscriptions SubscriptionStore
	engagement    EngagementService
	notifier      Notifier
	files         FileStore
	logger        zerolog.Logger
	now           func() time.Time
}

// NewForumService creates a new ForumService
func NewForumService(
	posts ForumStore,
	subscriptions SubscriptionStore,
	engagement EngagementService,
	notifier Notifier,
	files FileStore,
	logger zerolog.Logger,
) ForumService {
	return &forumServiceImpl{
		posts:         posts,
		subscriptions: subscriptions,
		engagement:    engagement,
		notifier:      notifier,
		files:         files,
		logger:        logger,
		now:           time.Now,
	}
}

var forumAccessors = listing.Accessors[models.ForumPost]{
	Text: func(p models.ForumPost) []string {
		return append([]string{p.Title, p.Content}, p.Tags...)
	},
	Category: func(p models.ForumPost) string { return p.CategoryName() },
	CourseID: func(p models.ForumPost) int64 { return p.CourseID },
	Created:  func(p models.ForumPost) time.Time { return p.CreatedAt },
	Rating:   func(p models.ForumPost) float64 { return deref(p.AvgRating) },
	Views:    func(p models.ForumPost) int64 { return p.Views },
	Title:    func(p models.ForumPost) string { return p.Title },
}

func (s *forumServiceImpl) List(ctx context.Context, viewer *appauth.Actor, params dto.ListParams, page, size int) (*dto.PaginatedResponse[models.ForumPost], error) {
	var filter repositories.ForumFilter
	if params.CourseID > 0 {
		filter.CourseID = &params.CourseID
	}
	if params.Mine && viewer != nil {
		filter.AuthorID = &viewer.UserID
	}
	if answered, err := strconv.ParseBool(params.Answered); err == nil {
		filter.Answered = &answered
	}

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list forum posts: %w", err)
	}
	paged, info := listing.Apply(posts, listQuery(params, page, size), forumAccessors, s.now())
	for i := range paged {
		s.resolveImages(&paged[i])
	}
	return &dto.PaginatedResponse[models.ForumPost]{Items: paged, Pagination: info}, nil
}

func (s *forumServiceImpl) MyPosts(ctx context.Context, actor *appauth.Actor) ([]models.ForumPost, error) {
	posts, err := s.posts.List(ctx, repositories.ForumFilter{AuthorID: &actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to list forum posts: %w", err)
	}
	for i := range posts {
		s.resolveImages(&posts[i])
	}
	return posts, nil
}

// resolveImages turns stored image keys into public URLs
func (s *forumServiceImpl) resolveImages(p *models.ForumPost) {
	urls := make([]string, 0, len(p.Images))
	for _, key := range p.Images {
		urls = append(urls, s.files.URL(key))
	}
	p.Images = urls
}

func (s *forumServiceImpl) Get(ctx context.Context, viewer *appauth.Actor, id int64) (*dto.ForumPostDetailResponse, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("postID", id).Msg("Failed to count forum post view")
	} else {
		post.Views++
	}
	s.resolveImages(post)

	ratings, err := s.engagement.Ratings(ctx, viewer, models.TargetForumPost, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.engagement.Comments(ctx, models.TargetForumPost, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ForumPostDetailResponse{
		ForumPost:  post,
		Ratings:    ratings.Ratings,
		UserRating: ratings.UserRating,
		Comments:   comments,
	}
	if viewer != nil && s.subscriptions != nil {
		subscribers, err := s.subscriptions.Subscribers(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load subscribers: %w", err)
		}
		for _, uid := range subscribers {
			if uid == viewer.UserID {
				resp.IsSubscribed = true
				break
			}
		}
	}
	return resp, nil
}

func (s *forumServiceImpl) Create(ctx context.Context, actor *appauth.Actor, req dto.CreateForumPostRequest, images []*multipart.FileHeader) (*models.ForumPost, error) {
	if len(images) > filestorage.MaxForumImages {
		return nil, apperrors.NewCustomError(apperrors.ErrTooManyFiles,
			fmt.Sprintf("ניתן להעלות עד %d תמונות", filestorage.MaxForumImages))
	}
	for _, img := range images {
		if err := filestorage.ImageRule.Validate(img); err != nil {
			return nil, err
		}
	}
	tags, err := ParseTags(req.Tags)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(images))
	for _, img := range images {
		stored, err := s.files.Save(ctx, img, "forum", "forum")
		if err != nil {
			s.removeImages(ctx, keys)
			return nil, fmt.Errorf("failed to store forum image: %w", err)
		}
		keys = append(keys, stored.Key)
	}

	post := &models.ForumPost{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Category: trimmedOrNil(req.Category),
		Tags:     tags,
		Images:   keys,
		IsUrgent: req.IsUrgent,
		CourseID: req.CourseID,
		AuthorID: actor.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.removeImages(ctx, keys)
		return nil, err
	}

	s.logger.Info().Int64("postID", post.ID).Int64("userID", actor.UserID).Int("images", len(keys)).Msg("Forum post created")
	return s.reload(ctx, post.ID)
}

func (s *forumServiceImpl) reload(ctx context.Context, id int64) (*models.ForumPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveImages(post)
	return post, nil
}

func (s *forumServiceImpl) Update(ctx context.Context, actor *appauth.Actor, id int64, req dto.UpdateForumPostRequest) (*models.ForumPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireOwnerOrAdmin(post.AuthorID, "אין לך הרשאה לערוך פוסט זה"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = strings.TrimSpace(*req.Content)
	}
	if req.CourseID != nil {
		post.CourseID = *req.CourseID
	}
	if req.Category != nil {
		post.Category = trimmedOrNil(req.Category)
	}
	if req.Tags != nil {
		post.Tags = cleanTags(req.Tags)
	}
	if req.IsUrgent != nil {
		post.IsUrgent = *req.IsUrgent
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *forumServiceImpl) SetAnswered(ctx context.Context, actor *appauth.Actor, id int64, answered bool) (*models.ForumPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireOwnerOrAdmin(post.AuthorID, "רק כותב הפוסט יכול לסמן אותו כנענה"); err != nil {
		return nil, err
	}
	if err := s.posts.SetAnswered(ctx, id, answered); err != nil {
		return nil, err
	}
	if answered && post.AuthorID != actor.UserID {
		notifyQuietly(ctx, s.notifier, s.logger, post.AuthorID, models.NotificationAnswered,
			"הדיון סומן כנענה", fmt.Sprintf("הדיון \"%s\" סומן כנענה", post.Title), targetLink(models.TargetForumPost, id))
	}
	return s.reload(ctx, id)
}

func (s *forumServiceImpl) Delete(ctx context.Context, actor *appauth.Actor, id int64) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.RequireOwnerOrAdmin(post.AuthorID, "אין לך הרשאה למחוק פוסט זה"); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImages(ctx, post.Images)
	s.logger.Info().Int64("postID", id).Int64("userID", actor.UserID).Msg("Forum post deleted")
	return nil
}

func (s *forumServiceImpl) removeImages(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.files.Delete(ctx, key); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("Failed to delete forum image")
		}
	}
}

// ParseTags accepts a JSON array of strings or a comma separated list
func ParseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, apperrors.NewValidationError("tags", "פורמט התגיות אינו תקין")
		}
	} else {
		tags = strings.Split(raw, ",")
	}
	tags = cleanTags(tags)
	if len(tags) > maxForumTags {
		return nil, apperrors.NewValidationError("tags", fmt.Sprintf("ניתן להוסיף עד %d תגיות", maxForumTags))
	}
	return tags, nil
}

// cleanTags trims tags and drops empty and repeated ones
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
