package repository

import (
	"context"
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

func TestSubjectAssignmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "assign_code", "subject_id", "teacher_id", "start_date", "end_date", "notes", "created_at", "updated_at",
		"subject_code", "subject_name", "teacher_title", "teacher_first_name", "teacher_last_name"}).
		AddRow("a1", "MATH-007", "s1", "t1", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), nil, "", now, now, "MATH", "Mathematics", "ms", "Anne", "Perera")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE sa.id = $1")).WithArgs("a1").WillReturnRows(rows)

	a, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "MATH-007", a.AssignCode)
	assert.Equal(t, "Mathematics", a.Subject.Name)
	assert.Equal(t, "Ms. Anne Perera", a.Teacher.DisplayName)
	assert.Nil(t, a.EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectAssignmentRepositoryCreateDuplicatePair(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO subject_assignments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subject_assignments_subject_teacher_key"})

	err := repo.Create(context.Background(), &models.SubjectAssignment{AssignCode: "MATH-008", SubjectID: "s1", TeacherID: "t1"})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.Equal(t, "subject_assignments_subject_teacher_key", database.ConstraintName(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectAssignmentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND sa.teacher_id = $1 ORDER BY sa.start_date ASC LIMIT 20 OFFSET 0")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subject_assignments sa")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), models.SubjectAssignmentFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
