package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

const classUUID = "7a9b0c1d-2e3f-4a5b-8c6d-7e8f9a0b1c2d"

type mockEnrollmentRepo struct {
	items     map[string]*models.Enrollment
	createErr error
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.items == nil {
		m.items = map[string]*models.Enrollment{}
	}
	e.ID = "e-new"
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, e *models.Enrollment) error {
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockAuditWriter struct {
	logs []models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func TestEnrollmentServiceCreateAudits(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	audit := &mockAuditWriter{}
	svc := NewEnrollmentService(repo, audit, nil, nil)

	e, err := svc.Create(context.Background(), EnrollmentRequest{StudentID: studentUUID, TuitionClassID: classUUID, StartDate: strPtr("2024-02-01")},
		models.AuditMeta{ActorID: "admin-1", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.True(t, e.Active)
	assert.Equal(t, "2024-02-01", e.StartDate.String())

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, models.AuditActionEnrollmentCreate, log.Action)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "admin-1", *log.UserID)
	var values map[string]string
	require.NoError(t, json.Unmarshal(log.NewValues, &values))
	assert.Equal(t, classUUID, values["tuition_class_id"])
}

func TestEnrollmentServiceDefaultsStartDate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, nil, nil, nil)

	e, err := svc.Create(context.Background(), EnrollmentRequest{StudentID: studentUUID, TuitionClassID: classUUID}, models.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.Today(), e.StartDate)
}

func TestEnrollmentServiceDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{createErr: &pq.Error{Code: "23505", Constraint: "enrollments_student_class_start_key"}}
	audit := &mockAuditWriter{}
	svc := NewEnrollmentService(repo, audit, nil, nil)

	_, err := svc.Create(context.Background(), EnrollmentRequest{StudentID: studentUUID, TuitionClassID: classUUID, StartDate: strPtr("2024-02-01")}, models.AuditMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Empty(t, audit.logs)
}

func TestEnrollmentServiceUpdateValidatesDates(t *testing.T) {
	repo := &mockEnrollmentRepo{items: map[string]*models.Enrollment{
		"e1": {ID: "e1", StudentID: studentUUID, TuitionClassID: classUUID, StartDate: mustDate(t, "2024-02-01"), Active: true},
	}}
	svc := NewEnrollmentService(repo, nil, nil, nil)

	_, err := svc.Update(context.Background(), "e1", EnrollmentRequest{StudentID: studentUUID, TuitionClassID: classUUID, EndDate: strPtr("2024-01-01")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	inactive := false
	e, err := svc.Update(context.Background(), "e1", EnrollmentRequest{StudentID: studentUUID, TuitionClassID: classUUID, EndDate: strPtr("2024-06-30"), Active: &inactive})
	require.NoError(t, err)
	assert.False(t, e.Active)
	assert.Equal(t, "2024-06-30", e.EndDate.String())
}

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}
