package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/studyhub-il/studyhub/internal/app/auth"
	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/filestorage"
	"github.com/studyhub-il/studyhub/internal/pkg/listing"
)

// SummaryService manages uploaded summaries
type SummaryService interface {
	List(ctx context.Context, viewer *appauth.Actor, params dto.ListParams, page, size int) (*dto.PaginatedResponse[dto.SummaryItem], error)
	MyContent(ctx context.Context, actor *appauth.Actor) ([]dto.SummaryItem, error)
	Get(ctx context.Context, viewer *appauth.Actor, id int64) (*dto.SummaryDetailResponse, error)
	Download(ctx context.Context, id int64) (*DownloadTarget, error)
	Create(ctx context.Context, actor *appauth.Actor, req dto.CreateSummaryRequest, file *multipart.FileHeader) (*models.Summary, error)
	Update(ctx context.Context, actor *appauth.Actor, id int64, req dto.UpdateSummaryRequest) (*models.Summary, error)
	Delete(ctx context.Context, actor *appauth.Actor, id int64) error
}

// DownloadTarget tells the handler where the document bytes live. LocalPath
// is set for the disk backend; otherwise the client is redirected to URL.
type DownloadTarget struct {
	URL       string
	LocalPath string
	FileName  string
}

type summaryServiceImpl struct {
	summaries  SummaryStore
	users      UserStore
	favorites  FavoriteStore
	courses    CourseService
	engagement EngagementService
	files      FileStore
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	summaries SummaryStore,
	users UserStore,
	favorites FavoriteStore,
	courses CourseService,
	engagement EngagementService,
	files FileStore,
	logger zerolog.Logger,
) SummaryService {
	return &summaryServiceImpl{
		summaries:  summaries,
		users:      users,
		favorites:  favorites,
		courses:    courses,
		engagement: engagement,
		files:      files,
		logger:     logger,
		now:        time.Now,
	}
}

var summaryAccessors = listing.Accessors[dto.SummaryItem]{
	Text: func(s dto.SummaryItem) []string {
		fields := []string{s.Title, s.DescriptionText()}
		if s.Course != nil {
			fields = append(fields, s.Course.CourseName, s.Course.CourseCode)
		}
		return fields
	},
	CourseID:  func(s dto.SummaryItem) int64 { return s.CourseID },
	FileType:  func(s dto.SummaryItem) string { return s.FileType },
	Created:   func(s dto.SummaryItem) time.Time { return s.CreatedAt },
	Rating:    func(s dto.SummaryItem) float64 { return deref(s.AvgRating) },
	Downloads: func(s dto.SummaryItem) int64 { return s.Downloads },
	Views:     func(s dto.SummaryItem) int64 { return s.Views },
	Title:     func(s dto.SummaryItem) string { return s.Title },
}

func (s *summaryServiceImpl) List(ctx context.Context, viewer *appauth.Actor, params dto.ListParams, page, size int) (*dto.PaginatedResponse[dto.SummaryItem], error) {
	filter := repositories.SummaryFilter{Institution: strings.TrimSpace(params.Institution)}
	if params.CourseID > 0 {
		filter.CourseID = &params.CourseID
	}
	if params.Mine && viewer != nil {
		filter.UploaderID = &viewer.UserID
	}

	items, err := s.load(ctx, viewer, filter)
	if err != nil {
		return nil, err
	}
	paged, info := listing.Apply(items, listQuery(params, page, size), summaryAccessors, s.now())
	return &dto.PaginatedResponse[dto.SummaryItem]{Items: paged, Pagination: info}, nil
}

func (s *summaryServiceImpl) MyContent(ctx context.Context, actor *appauth.Actor) ([]dto.SummaryItem, error) {
	return s.load(ctx, actor, repositories.SummaryFilter{UploaderID: &actor.UserID})
}

func (s *summaryServiceImpl) load(ctx context.Context, viewer *appauth.Actor, filter repositories.SummaryFilter) ([]dto.SummaryItem, error) {
	rows, err := s.summaries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	favorites, err := s.favoriteIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SummaryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.SummaryItem{
			Summary:    row,
			FileType:   row.FileType(),
			IsFavorite: favorites[row.ID],
		})
	}
	return items, nil
}

func (s *summaryServiceImpl) favoriteIDs(ctx context.Context, viewer *appauth.Actor) (map[int64]bool, error) {
	if viewer == nil || s.favorites == nil {
		return map[int64]bool{}, nil
	}
	ids, err := s.favorites.FavoriteIDs(ctx, viewer.UserID, models.TargetSummary)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return ids, nil
}

// Get returns one summary and counts the view
func (s *summaryServiceImpl) Get(ctx context.Context, viewer *appauth.Actor, id int64) (*dto.SummaryDetailResponse, error) {
	summary, err := s.summaries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.summaries.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("summaryID", id).Msg("Failed to count summary view")
	} else {
		summary.Views++
	}

	favorites, err := s.favoriteIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	ratings, err := s.engagement.Ratings(ctx, viewer, models.TargetSummary, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.engagement.Comments(ctx, models.TargetSummary, id)
	if err != nil {
		return nil, err
	}

	return &dto.SummaryDetailResponse{
		SummaryItem: dto.SummaryItem{
			Summary:    *summary,
			FileType:   summary.FileType(),
			IsFavorite: favorites[id],
		},
		Ratings:    ratings.Ratings,
		UserRating: ratings.UserRating,
		Comments:   comments,
	}, nil
}

// Download counts the download and locates the document
func (s *summaryServiceImpl) Download(ctx context.Context, id int64) (*DownloadTarget, error) {
	summary, err := s.summaries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.summaries.IncrementDownloads(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("summaryID", id).Msg("Failed to count summary download")
	}

	target := &DownloadTarget{
		URL:      summary.FilePath,
		FileName: summary.Title + "." + summary.FileType(),
	}
	if summary.FileKey != "" {
		target.URL = s.files.URL(summary.FileKey)
		if path, ok := s.files.LocalPath(summary.FileKey); ok {
			target.LocalPath = path
		}
	}
	return target, nil
}

func (s *summaryServiceImpl) Create(ctx context.Context, actor *appauth.Actor, req dto.CreateSummaryRequest, file *multipart.FileHeader) (*models.Summary, error) {
	if err := filestorage.DocumentRule.Validate(file); err != nil {
		return nil, err
	}
	uploader, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.ResolveForInstitution(ctx, req.CourseID, uploader.InstitutionName())
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, file, "summaries", "summary")
	if err != nil {
		return nil, fmt.Errorf("failed to store summary file: %w", err)
	}

	summary := &models.Summary{
		Title:        strings.TrimSpace(req.Title),
		Description:  trimmedOrNil(req.Description),
		FilePath:     stored.URL,
		FileKey:      stored.Key,
		CourseID:     course.ID,
		UploadedByID: actor.UserID,
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		s.removeFile(ctx, stored.Key)
		return nil, err
	}

	s.logger.Info().
		Int64("summaryID", summary.ID).
		Int64("userID", actor.UserID).
		Int64("courseID", course.ID).
		Str("key", stored.Key).
		Msg("Summary uploaded")

	return s.summaries.GetByID(ctx, summary.ID)
}

func (s *summaryServiceImpl) Update(ctx context.Context, actor *appauth.Actor, id int64, req dto.UpdateSummaryRequest) (*models.Summary, error) {
	summary, err := s.summaries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireOwnerOrAdmin(summary.UploadedByID, "אין לך הרשאה לערוך סיכום זה"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		summary.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		summary.Description = trimmedOrNil(req.Description)
	}
	if req.CourseID != nil {
		summary.CourseID = *req.CourseID
	}
	if err := s.summaries.Update(ctx, summary); err != nil {
		return nil, err
	}
	return s.summaries.GetByID(ctx, id)
}

// Delete removes the summary; a storage failure is logged and does not
// undo the deletion
func (s *summaryServiceImpl) Delete(ctx context.Context, actor *appauth.Actor, id int64) error {
	summary, err := s.summaries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.RequireOwnerOrAdmin(summary.UploadedByID, "אין לך הרשאה למחוק סיכום זה"); err != nil {
		return err
	}
	if err := s.summaries.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFile(ctx, summary.FileKey)
	s.logger.Info().Int64("summaryID", id).Int64("userID", actor.UserID).Msg("Summary deleted")
	return nil
}

func (s *summaryServiceImpl) removeFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to delete stored file")
	}
}

// listQuery maps the shared list parameters onto a listing query
func listQuery(p dto.ListParams, page, size int) listing.Query {
	return listing.Query{
		Search:   p.Search,
		Category: p.Category,
		CourseID: p.CourseID,
		FileType: p.FileType,
		Window:   p.Window,
		Sort:     listing.ParseSortKey(p.SortBy),
		Page:     page,
		Size:     size,
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
