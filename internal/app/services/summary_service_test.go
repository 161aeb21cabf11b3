package services

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

func upload(name, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Header: h, Size: size}
}

type summaryFixture struct {
	summaries *mockSummaryStore
	files     *mockFileStore
	svc       SummaryService
}

func newSummaryFixture(t *testing.T) summaryFixture {
	t.Helper()
	users := newMockUserStore()
	require.NoError(t, users.Create(context.Background(), &models.User{Email: "dana@example.com", FullName: "דנה"}))
	courses := NewCourseService(newMockCourseStore(models.Course{CourseCode: "CS101", CourseName: "מבוא", Institution: models.DefaultInstitution}), nil, nil, zerolog.Nop())

	f := summaryFixture{summaries: newMockSummaryStore(), files: newMockFileStore()}
	f.svc = NewSummaryService(f.summaries, users, newMockFavoriteStore(), courses, nil, f.files, zerolog.Nop())
	return f
}

func TestSummaryCreate_RejectsBadUploads(t *testing.T) {
	req := dto.CreateSummaryRequest{Title: "סיכום הרצאה", CourseID: 1}

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr error
	}{
		{"missing file", nil, apperrors.ErrFileRequired},
		{"executable", upload("notes.exe", "application/octet-stream", 1024), apperrors.ErrFileTypeInvalid},
		{"image", upload("notes.png", "image/png", 1024), apperrors.ErrFileTypeInvalid},
		{"pdf extension with wrong type", upload("notes.pdf", "text/html", 1024), apperrors.ErrFileTypeInvalid},
		{"over 10MB", upload("notes.pdf", "application/pdf", 10<<20+1), apperrors.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSummaryFixture(t)
			_, err := f.svc.Create(context.Background(), actor(1), req, tt.file)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.files.saves)
			assert.Empty(t, f.summaries.summaries)
		})
	}
}

func TestSummaryCreate_AcceptsExactly10MB(t *testing.T) {
	f := newSummaryFixture(t)
	created, err := f.svc.Create(context.Background(), actor(1),
		dto.CreateSummaryRequest{Title: "סיכום הרצאה", CourseID: 1},
		upload("notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 10<<20))
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.UploadedByID)
	assert.Equal(t, "docx", created.FileType())
	assert.True(t, f.files.stored[created.FileKey])
}

func TestSummaryCreate_RemovesStoredFileWhenInsertFails(t *testing.T) {
	f := newSummaryFixture(t)
	f.summaries.failCreate = true

	_, err := f.svc.Create(context.Background(), actor(1),
		dto.CreateSummaryRequest{Title: "סיכום הרצאה", CourseID: 1},
		upload("notes.pdf", "application/pdf", 2048))
	assert.ErrorIs(t, err, errStoreDown)

	assert.Equal(t, 1, f.files.saves)
	assert.Len(t, f.files.deleted, 1)
	assert.Empty(t, f.files.stored)
}
