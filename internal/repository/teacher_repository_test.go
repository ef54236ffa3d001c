package repository

import (
	"context"
	"errors"
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

var teacherRowColumns = []string{"id", "title", "first_name", "last_name", "dob", "phone", "whatsapp", "email", "user_id", "is_active", "created_at", "updated_at"}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows(teacherRowColumns).
		AddRow("t1", "ms", "Anne", "Perera", time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC), nil, nil, "anne@example.com", nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + teacherColumns + " FROM teachers WHERE 1=1 AND (LOWER(COALESCE(first_name, '')) LIKE $1 OR LOWER(COALESCE(last_name, '')) LIKE $1 OR LOWER(COALESCE(email, '')) LIKE $1) ORDER BY last_name ASC, first_name ASC LIMIT 20 OFFSET 0")).
		WithArgs("%anne%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1")).
		WithArgs("%anne%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TeacherFilter{Search: "Anne"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, list[0].DOB)
	assert.Equal(t, "1990-03-04", list[0].DOB.String())
	assert.Equal(t, "Ms. Anne Perera", list[0].DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), models.TitleMr, "Kamal", "Silva", nil, nil, nil, nil, nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{Title: models.TitleMr, FirstName: "Kamal", LastName: "Silva", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeleteProtected(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t1").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "tuition_classes_class_teacher_id_fkey"})

	err := repo.Delete(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDependents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"relation", "id", "code", "label"}).
		AddRow("assignments", "a1", "MATH-001", "Mathematics").
		AddRow("classes", "c1", "G6-A", "Grade 6 A")
	mock.ExpectQuery("SELECT 'classes' AS relation").WithArgs("t1").WillReturnRows(rows)

	deps, err := repo.Dependents(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, models.RelationAssignments, deps[0].Relation)
	assert.Equal(t, models.RelationClasses, deps[1].Relation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReassignAndDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM teachers WHERE id = $1 FOR SHARE")).
		WithArgs("t2").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t2"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM teachers WHERE id = $1 FOR SHARE")).
		WithArgs("t3").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t3"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tuition_classes SET class_teacher_id = $1")).
		WithArgs("t2", "t1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subject_assignments SET teacher_id = $1")).
		WithArgs("t3", "t1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := repo.ReassignAndDelete(context.Background(), "t1", models.TeacherReassignment{ClassesTo: "t2", AssignmentsTo: "t3"}.Targets())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.RelationClasses: 1, models.RelationAssignments: 1}, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReassignMissingTargetWritesNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM teachers WHERE id = $1 FOR SHARE")).
		WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	moved, err := repo.ReassignAndDelete(context.Background(), "t1", models.ReassignmentTargets{models.RelationClasses: "ghost"})
	require.Error(t, err)
	assert.Nil(t, moved)
	assert.True(t, errors.Is(err, ErrTargetNotFound))
	var targetErr *TargetError
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, models.RelationClasses, targetErr.Relation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReassignRollsBackWhenStillReferenced(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM teachers WHERE id = $1 FOR SHARE")).
		WithArgs("t2").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t2"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tuition_classes SET class_teacher_id = $1")).
		WithArgs("t2", "t1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t1").WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	_, err := repo.ReassignAndDelete(context.Background(), "t1", models.ReassignmentTargets{models.RelationClasses: "t2"})
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
