package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

var guardianRowColumns = []string{"id", "student_id", "name", "relationship", "phone", "whatsapp", "email", "is_primary", "created_at"}

func expectGuardianLock(mock sqlmock.Sqlmock, studentID string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM guardians WHERE student_id = $1 ORDER BY created_at, id FOR UPDATE")).
		WithArgs(studentID).
		WillReturnRows(rows)
}

func TestGuardianRepositoryCreateKeepsExistingPrimary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGuardianRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectGuardianLock(mock, "st1", sqlmock.NewRows(guardianRowColumns).
		AddRow("g1", "st1", "Mother", "mother", nil, nil, nil, true, created))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guardians SET is_primary = FALSE WHERE student_id = $1 AND is_primary")).
		WithArgs("st1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guardians SET name = ")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO guardians")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	g := &models.Guardian{StudentID: "st1", Name: "Father", Relationship: models.RelationshipFather}
	require.NoError(t, repo.Create(context.Background(), g))
	assert.NotEmpty(t, g.ID)
	assert.False(t, g.IsPrimary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardianRepositoryCreatePrimaryTakesOver(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGuardianRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectGuardianLock(mock, "st1", sqlmock.NewRows(guardianRowColumns).
		AddRow("g1", "st1", "Mother", "mother", nil, nil, nil, true, created))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guardians SET is_primary = FALSE")).
		WithArgs("st1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO guardians")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	g := &models.Guardian{StudentID: "st1", Name: "Uncle", Relationship: models.RelationshipGuardian, IsPrimary: true}
	require.NoError(t, repo.Create(context.Background(), g))
	assert.True(t, g.IsPrimary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardianRepositoryDeleteLastGuardianRefused(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGuardianRepository(db)

	mock.ExpectBegin()
	expectGuardianLock(mock, "st1", sqlmock.NewRows(guardianRowColumns).
		AddRow("g1", "st1", "Mother", "mother", nil, nil, nil, true, time.Now()))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "st1", "g1")
	assert.ErrorIs(t, err, ErrNoGuardians)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardianRepositoryDeletePrimaryPromotesNext(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGuardianRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectGuardianLock(mock, "st1", sqlmock.NewRows(guardianRowColumns).
		AddRow("g1", "st1", "Mother", "mother", nil, nil, nil, true, base).
		AddRow("g2", "st1", "Father", "father", nil, nil, nil, false, base.Add(time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guardians SET is_primary = FALSE")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM guardians WHERE student_id = $1 AND id = ANY($2)")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guardians SET name = ")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "st1", "g1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardianRepositoryUpdateForeignGuardian(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGuardianRepository(db)

	mock.ExpectBegin()
	expectGuardianLock(mock, "st1", sqlmock.NewRows(guardianRowColumns).
		AddRow("g1", "st1", "Mother", "mother", nil, nil, nil, true, time.Now()))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Guardian{ID: "g9", StudentID: "st1", Name: "X"})
	assert.ErrorIs(t, err, ErrGuardianNotOwned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
