package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/app/repositories"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

type mockCourseStore struct {
	courses map[int64]*models.Course
	nextID  int64
}

func newMockCourseStore(seed ...models.Course) *mockCourseStore {
	m := &mockCourseStore{courses: map[int64]*models.Course{}}
	for _, c := range seed {
		c := c
		m.nextID++
		c.ID = m.nextID
		m.courses[c.ID] = &c
	}
	return m
}

func (m *mockCourseStore) List(_ context.Context, _ repositories.CourseFilter) ([]models.Course, error) {
	var out []models.Course
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseStore) Institutions(_ context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockCourseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCourseStore) GetByCode(_ context.Context, code string) (*models.Course, error) {
	for _, c := range m.courses {
		if c.CourseCode == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

func (m *mockCourseStore) Create(ctx context.Context, c *models.Course) error {
	if _, err := m.GetByCode(ctx, c.CourseCode); err == nil {
		return apperrors.ErrCourseCodeAlreadyExists
	}
	if c.Institution == "" {
		c.Institution = models.DefaultInstitution
	}
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *mockCourseStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(m.courses, id)
	return nil
}

func TestResolveForInstitution(t *testing.T) {
	ctx := context.Background()
	store := newMockCourseStore(models.Course{CourseCode: "COURSE01", CourseName: "מבוא למדעי המחשב", Institution: models.DefaultInstitution})
	svc := NewCourseService(store, nil, nil, zerolog.Nop())

	same, err := svc.ResolveForInstitution(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), same.ID)

	same, err = svc.ResolveForInstitution(ctx, 1, models.DefaultInstitution)
	require.NoError(t, err)
	assert.Equal(t, int64(1), same.ID)

	created, err := svc.ResolveForInstitution(ctx, 1, "technion institute")
	require.NoError(t, err)
	assert.Equal(t, "TECHN-COURSE01", created.CourseCode)
	assert.Equal(t, "technion institute", created.Institution)
	assert.Equal(t, "מבוא למדעי המחשב", created.CourseName)

	again, err := svc.ResolveForInstitution(ctx, 1, "technion institute")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, store.courses, 2)

	_, err = svc.ResolveForInstitution(ctx, 42, "technion institute")
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestCourseAdminOperations(t *testing.T) {
	ctx := context.Background()
	store := newMockCourseStore()
	svc := NewCourseService(store, nil, nil, zerolog.Nop())
	req := dto.CreateCourseRequest{CourseCode: "CS101", CourseName: "מבני נתונים"}

	_, err := svc.Create(ctx, actor(1), req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	admin := actor(1)
	admin.Role = models.RoleAdmin
	course, err := svc.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultInstitution, course.Institution)

	_, err = svc.Create(ctx, admin, req)
	assert.ErrorIs(t, err, apperrors.ErrCourseCodeAlreadyExists)

	assert.ErrorIs(t, svc.Delete(ctx, actor(2), course.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, admin, course.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, course.ID), apperrors.ErrCourseNotFound)
}
