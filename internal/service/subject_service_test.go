package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects  map[string]*models.Subject
	updateErr error
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	return nil, 0, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = subjectUUID
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	return m.updateErr
}

func TestSubjectServiceCreateTrims(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, &stubAssignmentLister{}, nil, nil)

	subject, err := svc.Create(context.Background(), SubjectRequest{SubjectCode: " MATH ", Name: " Mathematics "})
	require.NoError(t, err)
	assert.Equal(t, subjectUUID, subject.ID)
	assert.Equal(t, "MATH", subject.SubjectCode)
	assert.Equal(t, "Mathematics", subject.Name)

	_, err = svc.Create(context.Background(), SubjectRequest{Name: "No code"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSubjectServiceUpdateDuplicateCode(t *testing.T) {
	repo := &mockSubjectRepo{
		subjects:  map[string]*models.Subject{subjectUUID: {ID: subjectUUID, SubjectCode: "MATH", Name: "Mathematics"}},
		updateErr: &pq.Error{Code: "23505", Constraint: "subjects_subject_code_key"},
	}
	svc := NewSubjectService(repo, &stubAssignmentLister{}, nil, nil)

	_, err := svc.Update(context.Background(), subjectUUID, SubjectRequest{SubjectCode: "SCI", Name: "Science"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSubjectServiceGetEmbedsAssignments(t *testing.T) {
	repo := &mockSubjectRepo{subjects: map[string]*models.Subject{subjectUUID: {ID: subjectUUID, SubjectCode: "MATH"}}}
	assignments := &stubAssignmentLister{assignments: []models.SubjectAssignment{{ID: "a1", AssignCode: "MATH-001", SubjectID: subjectUUID}}}
	svc := NewSubjectService(repo, assignments, nil, nil)

	detail, err := svc.Get(context.Background(), subjectUUID)
	require.NoError(t, err)
	require.Len(t, detail.Assignments, 1)
	assert.Equal(t, subjectUUID, assignments.filter.SubjectID)
	assert.Equal(t, nestedPageSize, assignments.filter.PageSize)

	_, err = svc.Get(context.Background(), missingUUID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
