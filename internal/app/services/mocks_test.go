package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/filestorage"
)

var errStoreDown = errors.New("store unavailable")

type ratingKey struct {
	target   models.TargetType
	targetID int64
	userID   int64
}

type targetKey struct {
	target models.TargetType
	id     int64
}

// mockEngagementStore keeps ratings and comments in maps and derives the
// aggregate from the stored rows the way the database does.
type mockEngagementStore struct {
	mu       sync.Mutex
	targets  map[targetKey]repositories.TargetInfo
	ratings  map[ratingKey]int
	order    []ratingKey
	versions map[targetKey]int64
	comments []models.Comment
	nextID   int64
}

func newMockEngagementStore() *mockEngagementStore {
	return &mockEngagementStore{
		targets:  map[targetKey]repositories.TargetInfo{},
		ratings:  map[ratingKey]int{},
		versions: map[targetKey]int64{},
	}
}

func (m *mockEngagementStore) addTarget(target models.TargetType, id, ownerID int64, title string) {
	m.targets[targetKey{target, id}] = repositories.TargetInfo{OwnerID: ownerID, Title: title}
}

func notFoundFor(target models.TargetType) error {
	switch target {
	case models.TargetSummary:
		return apperrors.ErrSummaryNotFound
	case models.TargetForumPost:
		return apperrors.ErrForumPostNotFound
	case models.TargetTool:
		return apperrors.ErrToolNotFound
	}
	return apperrors.ErrResourceNotFound
}

func (m *mockEngagementStore) aggregateLocked(target models.TargetType, id int64) models.RatingAggregate {
	var values []int
	for _, k := range m.order {
		if k.target == target && k.targetID == id {
			values = append(values, m.ratings[k])
		}
	}
	agg := models.NewRatingAggregate(values)
	agg.Version = m.versions[targetKey{target, id}]
	return agg
}

func (m *mockEngagementStore) Rate(_ context.Context, target models.TargetType, targetID, userID int64, value int) (models.RatingAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.targets[targetKey{target, targetID}]; !ok {
		return models.RatingAggregate{}, notFoundFor(target)
	}
	k := ratingKey{target, targetID, userID}
	if _, ok := m.ratings[k]; !ok {
		m.order = append(m.order, k)
	}
	m.ratings[k] = value
	m.versions[targetKey{target, targetID}]++
	return m.aggregateLocked(target, targetID), nil
}

func (m *mockEngagementStore) Aggregate(_ context.Context, target models.TargetType, targetID int64) (models.RatingAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.targets[targetKey{target, targetID}]; !ok {
		return models.RatingAggregate{}, notFoundFor(target)
	}
	return m.aggregateLocked(target, targetID), nil
}

func (m *mockEngagementStore) Target(_ context.Context, target models.TargetType, targetID int64) (repositories.TargetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.targets[targetKey{target, targetID}]
	if !ok {
		return repositories.TargetInfo{}, notFoundFor(target)
	}
	return info, nil
}

func (m *mockEngagementStore) Ratings(_ context.Context, target models.TargetType, targetID int64) ([]models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Rating{}
	for _, k := range m.order {
		if k.target == target && k.targetID == targetID {
			out = append(out, models.Rating{TargetType: target, TargetID: targetID, UserID: k.userID, Rating: m.ratings[k]})
		}
	}
	return out, nil
}

func (m *mockEngagementStore) UserRating(_ context.Context, target models.TargetType, targetID, userID int64) (*int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.ratings[ratingKey{target, targetID, userID}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *mockEngagementStore) AddComment(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.targets[targetKey{c.TargetType, c.TargetID}]; !ok {
		return notFoundFor(c.TargetType)
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.Author = &models.UserRef{ID: c.AuthorID, FullName: "user"}
	m.comments = append(m.comments, *c)
	return nil
}

func (m *mockEngagementStore) Comments(_ context.Context, target models.TargetType, targetID int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if c.TargetType == target && c.TargetID == targetID {
			out = append(out, c)
		}
	}
	return out, nil
}

// mockSubscriptionStore maps post ids to subscriber ids
type mockSubscriptionStore struct {
	subs map[int64][]int64
}

func (m *mockSubscriptionStore) Create(_ context.Context, s *models.Subscription) error {
	for _, id := range m.subs[s.PostID] {
		if id == s.UserID {
			return apperrors.ErrAlreadySubscribed
		}
	}
	m.subs[s.PostID] = append(m.subs[s.PostID], s.UserID)
	return nil
}

func (m *mockSubscriptionStore) Delete(_ context.Context, userID, postID int64) error {
	ids := m.subs[postID][:0]
	for _, id := range m.subs[postID] {
		if id != userID {
			ids = append(ids, id)
		}
	}
	m.subs[postID] = ids
	return nil
}

func (m *mockSubscriptionStore) ListByUser(_ context.Context, userID int64) ([]models.Subscription, error) {
	var out []models.Subscription
	for postID, ids := range m.subs {
		for _, id := range ids {
			if id == userID {
				out = append(out, models.Subscription{UserID: userID, PostID: postID})
			}
		}
	}
	return out, nil
}

func (m *mockSubscriptionStore) Subscribers(_ context.Context, postID int64) ([]int64, error) {
	return m.subs[postID], nil
}

// recordingNotifier captures notifications instead of storing them
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	userID int64
	kind   models.NotificationType
}

func (r *recordingNotifier) Notify(_ context.Context, userID int64, kind models.NotificationType, _, _ string, _ *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{userID, kind})
	return nil
}

func (r *recordingNotifier) recipients(kind models.NotificationType) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for _, n := range r.sent {
		if n.kind == kind {
			ids = append(ids, n.userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// mockUserStore is a map-backed UserStore
type mockUserStore struct {
	users   map[int64]*models.User
	counts  map[int64]models.UserCounts
	avg     map[int64]float64
	deleted []int64
	nextID  int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:  map[int64]*models.User{},
		counts: map[int64]models.UserCounts{},
		avg:    map[int64]float64{},
	}
}

func (m *mockUserStore) Create(_ context.Context, u *models.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	if upd.Institution != nil {
		u.Institution = upd.Institution
	}
	if upd.Interests != nil {
		u.Interests = upd.Interests
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (m *mockUserStore) SetEmailVerified(_ context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

func (m *mockUserStore) UpdateProfilePicture(_ context.Context, id int64, url string) error {
	u, ok := m.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.ProfilePicture = &url
	return nil
}

func (m *mockUserStore) UpdateRole(_ context.Context, id int64, role models.Role) error {
	u, ok := m.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserStore) Counts(_ context.Context, id int64) (models.UserCounts, error) {
	return m.counts[id], nil
}

func (m *mockUserStore) AverageReceivedRating(_ context.Context, id int64) (*float64, error) {
	v, ok := m.avg[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *mockUserStore) ListWithCounts(_ context.Context) ([]repositories.UserWithCounts, error) {
	out := make([]repositories.UserWithCounts, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, repositories.UserWithCounts{User: *u, Counts: m.counts[id]})
		}
	}
	return out, nil
}

// mockTokenStore is a map-backed TokenStore
type mockTokenStore struct {
	refresh map[string]*models.RefreshToken
	oneTime map[string]*models.OneTimeToken
	revoked []int64
	nextID  int64
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{refresh: map[string]*models.RefreshToken{}, oneTime: map[string]*models.OneTimeToken{}}
}

func (m *mockTokenStore) CreateRefreshToken(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	m.refresh[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (m *mockTokenStore) GetRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.refresh[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTokenStore) RevokeRefreshToken(_ context.Context, token string) error {
	if t, ok := m.refresh[token]; ok {
		t.IsRevoked = true
	}
	return nil
}

func (m *mockTokenStore) RevokeAllForUser(_ context.Context, userID int64) error {
	for _, t := range m.refresh {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *mockTokenStore) CreateOneTimeToken(_ context.Context, t *models.OneTimeToken) error {
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.oneTime[t.Token] = &cp
	return nil
}

func (m *mockTokenStore) GetOneTimeToken(_ context.Context, token string, kind models.OneTimeTokenKind) (*models.OneTimeToken, error) {
	t, ok := m.oneTime[token]
	if !ok || t.Kind != kind || t.UsedAt != nil {
		return nil, apperrors.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTokenStore) MarkOneTimeTokenUsed(_ context.Context, id int64) error {
	now := time.Now()
	for _, t := range m.oneTime {
		if t.ID == id {
			t.UsedAt = &now
		}
	}
	return nil
}

// firstOneTimeToken returns any stored token of kind
func (m *mockTokenStore) firstOneTimeToken(kind models.OneTimeTokenKind) *models.OneTimeToken {
	for _, t := range m.oneTime {
		if t.Kind == kind {
			return t
		}
	}
	return nil
}

// mockRevoker records blacklisted token ids
type mockRevoker struct {
	blacklisted map[string]time.Duration
}

func (m *mockRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.blacklisted[jti] = ttl
	return nil
}

// mockFileStore keeps stored keys in a map and never touches the upload body
type mockFileStore struct {
	stored  map[string]bool
	deleted []string
	saves   int
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{stored: map[string]bool{}}
}

func (m *mockFileStore) Save(_ context.Context, fh *multipart.FileHeader, folder, prefix string) (*filestorage.StoredFile, error) {
	m.saves++
	key := fmt.Sprintf("%s/%s-%d-%s", folder, prefix, m.saves, fh.Filename)
	m.stored[key] = true
	return &filestorage.StoredFile{Key: key, URL: m.URL(key), Size: fh.Size, OriginalName: fh.Filename}, nil
}

func (m *mockFileStore) Delete(_ context.Context, key string) error {
	delete(m.stored, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockFileStore) URL(key string) string {
	return "/uploads/" + key
}

func (m *mockFileStore) LocalPath(string) (string, bool) {
	return "", false
}

// mockSummaryStore is a map-backed SummaryStore; failCreate simulates a
// database error on insert
type mockSummaryStore struct {
	summaries  map[int64]*models.Summary
	nextID     int64
	failCreate bool
}

func newMockSummaryStore() *mockSummaryStore {
	return &mockSummaryStore{summaries: map[int64]*models.Summary{}}
}

func (m *mockSummaryStore) List(_ context.Context, f repositories.SummaryFilter) ([]models.Summary, error) {
	var out []models.Summary
	for id := int64(1); id <= m.nextID; id++ {
		s, ok := m.summaries[id]
		if !ok || (f.UploaderID != nil && s.UploadedByID != *f.UploaderID) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSummaryStore) GetByID(_ context.Context, id int64) (*models.Summary, error) {
	s, ok := m.summaries[id]
	if !ok {
		return nil, apperrors.ErrSummaryNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSummaryStore) Create(_ context.Context, s *models.Summary) error {
	if m.failCreate {
		return errStoreDown
	}
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	cp := *s
	m.summaries[s.ID] = &cp
	return nil
}

func (m *mockSummaryStore) Update(_ context.Context, s *models.Summary) error {
	if _, ok := m.summaries[s.ID]; !ok {
		return apperrors.ErrSummaryNotFound
	}
	cp := *s
	m.summaries[s.ID] = &cp
	return nil
}

func (m *mockSummaryStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.summaries[id]; !ok {
		return apperrors.ErrSummaryNotFound
	}
	delete(m.summaries, id)
	return nil
}

func (m *mockSummaryStore) IncrementViews(_ context.Context, id int64) error {
	if s, ok := m.summaries[id]; ok {
		s.Views++
	}
	return nil
}

func (m *mockSummaryStore) IncrementDownloads(_ context.Context, id int64) error {
	if s, ok := m.summaries[id]; ok {
		s.Downloads++
	}
	return nil
}

// mockForumStore is a map-backed ForumStore that applies ForumFilter the way
// the repository's WHERE clause does
type mockForumStore struct {
	posts      map[int64]*models.ForumPost
	nextID     int64
	failCreate bool
}

func newMockForumStore(seed ...models.ForumPost) *mockForumStore {
	m := &mockForumStore{posts: map[int64]*models.ForumPost{}}
	for _, p := range seed {
		p := p
		m.nextID++
		p.ID = m.nextID
		p.CreatedAt = time.Now().Add(-time.Duration(m.nextID) * time.Minute)
		m.posts[p.ID] = &p
	}
	return m
}

func (m *mockForumStore) List(_ context.Context, f repositories.ForumFilter) ([]models.ForumPost, error) {
	var out []models.ForumPost
	for id := int64(1); id <= m.nextID; id++ {
		p, ok := m.posts[id]
		if !ok {
			continue
		}
		if f.CourseID != nil && p.CourseID != *f.CourseID {
			continue
		}
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if f.Answered != nil && p.IsAnswered != *f.Answered {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockForumStore) GetByID(_ context.Context, id int64) (*models.ForumPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperrors.ErrForumPostNotFound
	}
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return &cp, nil
}

func (m *mockForumStore) Create(_ context.Context, p *models.ForumPost) error {
	if m.failCreate {
		return errStoreDown
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *mockForumStore) Update(_ context.Context, p *models.ForumPost) error {
	if _, ok := m.posts[p.ID]; !ok {
		return apperrors.ErrForumPostNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *mockForumStore) SetAnswered(_ context.Context, id int64, answered bool) error {
	p, ok := m.posts[id]
	if !ok {
		return apperrors.ErrForumPostNotFound
	}
	p.IsAnswered = answered
	return nil
}

func (m *mockForumStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return apperrors.ErrForumPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockForumStore) IncrementViews(_ context.Context, id int64) error {
	if p, ok := m.posts[id]; ok {
		p.Views++
	}
	return nil
}

type favoriteKey struct {
	userID int64
	target models.TargetType
	id     int64
}

// mockFavoriteStore enforces the unique (user, item) constraint
type mockFavoriteStore struct {
	favorites map[favoriteKey]models.Favorite
	nextID    int64
}

func newMockFavoriteStore() *mockFavoriteStore {
	return &mockFavoriteStore{favorites: map[favoriteKey]models.Favorite{}}
}

func favoriteKeyOf(f *models.Favorite) favoriteKey {
	if f.SummaryID != nil {
		return favoriteKey{f.UserID, models.TargetSummary, *f.SummaryID}
	}
	return favoriteKey{f.UserID, models.TargetTool, *f.ToolID}
}

func (m *mockFavoriteStore) List(_ context.Context, userID int64) ([]models.Favorite, error) {
	var out []models.Favorite
	for k, f := range m.favorites {
		if k.userID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockFavoriteStore) Add(_ context.Context, f *models.Favorite) error {
	k := favoriteKeyOf(f)
	if _, ok := m.favorites[k]; ok {
		return apperrors.ErrAlreadyFavorite
	}
	m.nextID++
	f.ID = m.nextID
	f.CreatedAt = time.Now()
	m.favorites[k] = *f
	return nil
}

func (m *mockFavoriteStore) Remove(_ context.Context, userID int64, target models.TargetType, targetID int64) error {
	delete(m.favorites, favoriteKey{userID, target, targetID})
	return nil
}

func (m *mockFavoriteStore) FavoriteIDs(_ context.Context, userID int64, target models.TargetType) (map[int64]bool, error) {
	ids := map[int64]bool{}
	for k := range m.favorites {
		if k.userID == userID && k.target == target {
			ids[k.id] = true
		}
	}
	return ids, nil
}

// mockMessageStore keeps messages in insertion order
type mockMessageStore struct {
	messages []models.Message
	nextID   int64
}

func inThread(msg models.Message, a, b int64) bool {
	return (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a)
}

func (m *mockMessageStore) Create(_ context.Context, msg *models.Message) error {
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockMessageStore) Conversation(_ context.Context, userID, partnerID int64) ([]models.Message, error) {
	out := []models.Message{}
	for _, msg := range m.messages {
		if inThread(msg, userID, partnerID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockMessageStore) MarkConversationRead(_ context.Context, userID, partnerID int64) error {
	for i := range m.messages {
		if m.messages[i].ReceiverID == userID && m.messages[i].SenderID == partnerID {
			m.messages[i].IsRead = true
		}
	}
	return nil
}

func (m *mockMessageStore) Conversations(_ context.Context, _ int64) ([]models.Conversation, error) {
	return nil, nil
}

func (m *mockMessageStore) UnreadCount(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

// recordingPublisher captures realtime events
type recordingPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	userID    int64
	eventType string
	payload   any
}

func (r *recordingPublisher) Publish(userID int64, eventType string, payload any) {
	r.events = append(r.events, publishedEvent{userID, eventType, payload})
}

// mockHelpRequestStore is a map-backed HelpRequestStore
type mockHelpRequestStore struct {
	requests map[int64]*models.HelpRequest
	nextID   int64
}

func (m *mockHelpRequestStore) List(_ context.Context, courseID *int64, status models.HelpRequestStatus) ([]models.HelpRequest, error) {
	var out []models.HelpRequest
	for id := int64(1); id <= m.nextID; id++ {
		h, ok := m.requests[id]
		if !ok || (courseID != nil && h.CourseID != *courseID) || (status != "" && h.Status != status) {
			continue
		}
		out = append(out, *h)
	}
	return out, nil
}

func (m *mockHelpRequestStore) GetByID(_ context.Context, id int64) (*models.HelpRequest, error) {
	h, ok := m.requests[id]
	if !ok {
		return nil, apperrors.ErrHelpRequestNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *mockHelpRequestStore) Create(_ context.Context, h *models.HelpRequest) error {
	m.nextID++
	h.ID = m.nextID
	h.CreatedAt = time.Now()
	cp := *h
	m.requests[h.ID] = &cp
	return nil
}

func (m *mockHelpRequestStore) UpdateStatus(_ context.Context, id int64, status models.HelpRequestStatus) error {
	h, ok := m.requests[id]
	if !ok {
		return apperrors.ErrHelpRequestNotFound
	}
	h.Status = status
	return nil
}

func (m *mockHelpRequestStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.requests[id]; !ok {
		return apperrors.ErrHelpRequestNotFound
	}
	delete(m.requests, id)
	return nil
}
