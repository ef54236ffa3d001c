package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/pkg/database"
)

func TestEnrollmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "tuition_class_id", "start_date", "end_date", "active", "fee_override",
		"created_at", "updated_at", "reg_no", "first_name", "last_name", "class_code", "class_name"}).
		AddRow("e1", "st1", "c1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), nil, true, "1500.00", now, now, "ST-0001", "Nimal", "Fernando", "G6-A", "Grade 6 A")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).WithArgs("e1").WillReturnRows(rows)

	e, err := repo.FindByID(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, e.FeeOverride)
	assert.Equal(t, 1500.0, *e.FeeOverride)
	assert.Equal(t, "2024-02-01", e.StartDate.String())
	assert.Equal(t, "ST-0001", e.Student.RegNo)
	assert.Equal(t, "G6-A", e.TuitionClass.ClassCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollments_student_class_start_key"})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "st1", TuitionClassID: "c1", StartDate: models.Today(), Active: true})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1")).WithArgs("e9").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "e9"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
