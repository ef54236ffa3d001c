package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type mockTeacherRepo struct {
	items     map[string]*models.Teacher
	list      []models.Teacher
	total     int
	listErr   error
	createErr error
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.list, m.total, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := m.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	teacher.ID = "generated"
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

type stubClassLister struct {
	classes []models.TuitionClass
	filter  models.TuitionClassFilter
}

func (s *stubClassLister) List(ctx context.Context, filter models.TuitionClassFilter) ([]models.TuitionClass, int, error) {
	s.filter = filter
	return s.classes, len(s.classes), nil
}

type stubAssignmentLister struct {
	assignments []models.SubjectAssignment
	filter      models.SubjectAssignmentFilter
}

func (s *stubAssignmentLister) List(ctx context.Context, filter models.SubjectAssignmentFilter) ([]models.SubjectAssignment, int, error) {
	s.filter = filter
	return s.assignments, len(s.assignments), nil
}

func strPtr(v string) *string { return &v }

func TestTeacherServiceCreate(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &stubClassLister{}, &stubAssignmentLister{}, validator.New(), zap.NewNop())

	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{
		Title:     models.TitleMs,
		FirstName: " Nadia ",
		LastName:  "Perera",
		DOB:       strPtr("1990-04-02"),
		Phone:     strPtr("  "),
		Email:     strPtr("nadia@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nadia", teacher.FirstName)
	assert.True(t, teacher.IsActive)
	assert.Nil(t, teacher.Phone)
	require.NotNil(t, teacher.DOB)
	assert.Equal(t, "1990-04-02", teacher.DOB.String())
	assert.Len(t, repo.items, 1)
}

func TestTeacherServiceTrimsEmailBeforeValidation(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &stubClassLister{}, &stubAssignmentLister{}, nil, nil)

	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{
		Title:     models.TitleMr,
		FirstName: "Sunil",
		LastName:  "Jayasuriya",
		Email:     strPtr(" sunil@example.com "),
	})
	require.NoError(t, err)
	require.NotNil(t, teacher.Email)
	assert.Equal(t, "sunil@example.com", *teacher.Email)

	updated, err := svc.Update(context.Background(), teacher.ID, UpdateTeacherRequest{
		Title:     models.TitleMr,
		FirstName: "Sunil",
		LastName:  "Jayasuriya",
		Email:     strPtr("   "),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
}

func TestTeacherServiceCreateValidation(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, &stubClassLister{}, &stubAssignmentLister{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{Title: "dr", FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), CreateTeacherRequest{Title: models.TitleMr, FirstName: "A", LastName: "B", DOB: strPtr("02/04/1990")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTeacherServiceCreateMissingUser(t *testing.T) {
	repo := &mockTeacherRepo{createErr: &pq.Error{Code: "23503", Constraint: "teachers_user_id_fkey"}}
	svc := NewTeacherService(repo, &stubClassLister{}, &stubAssignmentLister{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{
		Title: models.TitleMr, FirstName: "A", LastName: "B", UserID: strPtr("6c9c5c9e-3b8a-4d0e-a7d6-6f5fb1f0b1aa"),
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTeacherServiceUpdateKeepsActiveFlag(t *testing.T) {
	repo := &mockTeacherRepo{items: map[string]*models.Teacher{
		"t1": {ID: "t1", Title: models.TitleMr, FirstName: "Old", LastName: "Name", IsActive: false},
	}}
	svc := NewTeacherService(repo, &stubClassLister{}, &stubAssignmentLister{}, nil, nil)

	teacher, err := svc.Update(context.Background(), "t1", UpdateTeacherRequest{Title: models.TitleRev, FirstName: "New", LastName: "Name"})
	require.NoError(t, err)
	assert.Equal(t, "New", teacher.FirstName)
	assert.False(t, teacher.IsActive)
	assert.Equal(t, models.TitleRev, repo.items["t1"].Title)
}

func TestTeacherServiceGetDetail(t *testing.T) {
	repo := &mockTeacherRepo{items: map[string]*models.Teacher{"t1": {ID: "t1", FirstName: "Asha", LastName: "Silva"}}}
	classes := &stubClassLister{classes: []models.TuitionClass{{ID: "c1", ClassCode: "CLS-001"}}}
	assignments := &stubAssignmentLister{}
	svc := NewTeacherService(repo, classes, assignments, nil, nil)

	detail, err := svc.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, detail.Classes, 1)
	assert.NotNil(t, detail.Assignments)
	assert.Empty(t, detail.Assignments)
	assert.Equal(t, "t1", classes.filter.ClassTeacherID)
	assert.Equal(t, "t1", assignments.filter.TeacherID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTeacherServiceListError(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{listErr: errors.New("boom")}, &stubClassLister{}, &stubAssignmentLister{}, nil, nil)

	_, _, err := svc.List(context.Background(), models.TeacherFilter{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
