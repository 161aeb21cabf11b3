package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

func newForumFixture(seed ...models.ForumPost) (*mockForumStore, *mockFileStore, ForumService) {
	store := newMockForumStore(seed...)
	files := newMockFileStore()
	svc := NewForumService(store, &mockSubscriptionStore{subs: map[int64][]int64{}}, nil, &recordingNotifier{}, files, zerolog.Nop())
	return store, files, svc
}

func images(n int) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, n)
	for i := range out {
		out[i] = upload(fmt.Sprintf("img%d.png", i), "image/png", 1024)
	}
	return out
}

var forumReq = dto.CreateForumPostRequest{
	Title:    "שאלה על רקורסיה",
	Content:  "איך מחשבים סיבוכיות של פונקציה רקורסיבית?",
	CourseID: 1,
	Tags:     `["אלגוריתמים", "רקורסיה"]`,
}

func TestForumCreate_ImageLimit(t *testing.T) {
	ctx := context.Background()

	store, files, svc := newForumFixture()
	_, err := svc.Create(ctx, actor(1), forumReq, images(6))
	assert.ErrorIs(t, err, apperrors.ErrTooManyFiles)
	assert.Zero(t, files.saves)
	assert.Empty(t, store.posts)

	post, err := svc.Create(ctx, actor(1), forumReq, images(5))
	require.NoError(t, err)
	assert.Len(t, post.Images, 5)
	assert.Equal(t, []string{"אלגוריתמים", "רקורסיה"}, post.Tags)
	for _, url := range post.Images {
		assert.True(t, strings.HasPrefix(url, "/uploads/forum/"), url)
	}
}

func TestForumCreate_RejectsNonImage(t *testing.T) {
	_, files, svc := newForumFixture()
	imgs := append(images(1), upload("notes.pdf", "application/pdf", 1024))

	_, err := svc.Create(context.Background(), actor(1), forumReq, imgs)
	assert.ErrorIs(t, err, apperrors.ErrFileTypeInvalid)
	assert.Zero(t, files.saves)
}

func TestForumCreate_RemovesImagesWhenInsertFails(t *testing.T) {
	store, files, svc := newForumFixture()
	store.failCreate = true

	_, err := svc.Create(context.Background(), actor(1), forumReq, images(3))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 3, files.saves)
	assert.Len(t, files.deleted, 3)
	assert.Empty(t, files.stored)
}

func TestParseTags(t *testing.T) {
	many := make([]string, 21)
	for i := range many {
		many[i] = fmt.Sprintf("t%d", i)
	}

	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"empty", "  ", []string{}, false},
		{"json array", `["java", " oop ", ""]`, []string{"java", "oop"}, false},
		{"comma list", "java, oop ,,sql", []string{"java", "oop", "sql"}, false},
		{"duplicates dropped", `["java","java"," java"]`, []string{"java"}, false},
		{"comma duplicates dropped", "sql,sql,db", []string{"sql", "db"}, false},
		{"exactly 20", strings.Join(many[:20], ","), many[:20], false},
		{"21 tags", strings.Join(many, ","), nil, true},
		{"21 with duplicates is 20", strings.Join(append(many[:20:20], "t0"), ","), many[:20], false},
		{"broken json", `["java",`, nil, true},
		{"json of wrong type", `[1, 2]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTags(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForumList_AnsweredAndMineFilters(t *testing.T) {
	_, _, svc := newForumFixture(
		models.ForumPost{Title: "open by 1", AuthorID: 1, CourseID: 1},
		models.ForumPost{Title: "answered by 1", AuthorID: 1, CourseID: 1, IsAnswered: true},
		models.ForumPost{Title: "open by 2", AuthorID: 2, CourseID: 2},
		models.ForumPost{Title: "answered by 2", AuthorID: 2, CourseID: 2, IsAnswered: true},
	)
	ctx := context.Background()

	titles := func(params dto.ListParams, viewer int64) []string {
		t.Helper()
		v := actor(viewer)
		if viewer == 0 {
			v = nil
		}
		resp, err := svc.List(ctx, v, params, 1, 20)
		require.NoError(t, err)
		out := make([]string, 0, len(resp.Items))
		for _, p := range resp.Items {
			out = append(out, p.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"answered by 1", "answered by 2"}, titles(dto.ListParams{Answered: "true"}, 0))
	assert.ElementsMatch(t, []string{"open by 1", "open by 2"}, titles(dto.ListParams{Answered: "false"}, 0))
	assert.Len(t, titles(dto.ListParams{Answered: "maybe"}, 0), 4)

	assert.ElementsMatch(t, []string{"open by 1", "answered by 1"}, titles(dto.ListParams{Mine: true}, 1))
	assert.ElementsMatch(t, []string{"answered by 2"}, titles(dto.ListParams{Mine: true, Answered: "true"}, 2))

	// mine without a viewer lists everything
	assert.Len(t, titles(dto.ListParams{Mine: true}, 0), 4)

	assert.ElementsMatch(t, []string{"open by 2"}, titles(dto.ListParams{CourseID: 2, Answered: "false"}, 0))
}
