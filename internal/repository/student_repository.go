package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

const studentSelect = `SELECT s.id, s.reg_no, s.first_name, s.last_name, s.dob, s.joined_date, s.nic, s.school, s.gender,
	s.current_class_id, s.address, s.phone, s.whatsapp, s.email, s.is_active, s.created_at, s.updated_at,
	c.class_code, c.name AS class_name
	FROM students s LEFT JOIN tuition_classes c ON c.id = s.current_class_id`

type studentRow struct {
	models.Student
	ClassCode sql.NullString `db:"class_code"`
	ClassName sql.NullString `db:"class_name"`
}

func (row studentRow) toModel() models.Student {
	st := row.Student
	if st.CurrentClassID != nil && row.ClassCode.Valid {
		st.CurrentClass = &models.ClassSummary{ID: *st.CurrentClassID, ClassCode: row.ClassCode.String, Name: row.ClassName.String}
	}
	return st
}

// StudentRepository manages persistence for students and their guardian sets.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter with their current class embedded.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var q listQuery
	if filter.Active != nil {
		q.where("s.is_active = $%d", *filter.Active)
	}
	if filter.CurrentClassID != "" {
		q.where("s.current_class_id = $%d", filter.CurrentClassID)
	}
	q.search(filter.Search, "s.reg_no", "s.first_name", "s.last_name", "s.phone", "s.email")

	where := " WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"reg_no":     "s.reg_no",
		"first_name": "s.first_name",
		"last_name":  "s.last_name",
		"created_at": "s.created_at",
	}, "s.reg_no")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d", studentSelect, where, order, limit, offset)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students s"+where, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students, total, nil
}

// ListByClass returns the active students whose current class is classID, ordered by registration number.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	var rows []studentRow
	query := studentSelect + " WHERE s.current_class_id = $1 AND s.is_active ORDER BY s.reg_no"
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students, nil
}

// FindByID returns a student with the current class embedded.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var row studentRow
	if err := r.db.GetContext(ctx, &row, studentSelect+" WHERE s.id = $1", id); err != nil {
		return nil, err
	}
	st := row.toModel()
	return &st, nil
}

// LatestCode returns the registration number of the most recently created student.
func (r *StudentRepository) LatestCode(ctx context.Context) (string, error) {
	return latestCode(ctx, r.db, "students", "reg_no")
}

// Delete removes a student. Guardians and enrollments cascade.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "students", id)
}

// SaveWithGuardians writes the student row and its guardian changes in one transaction. The save is
// rolled back with ErrNoGuardians when the resulting guardian set is empty, and the primary flag is
// resolved before commit. It returns the guardian set as committed.
func (r *StudentRepository) SaveWithGuardians(ctx context.Context, student *models.Student, changes GuardianChanges, create bool) (guardians []models.Guardian, err error) {
	now := time.Now().UTC()
	if create {
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		if student.CreatedAt.IsZero() {
			student.CreatedAt = now
		}
	}
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin student tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing []models.Guardian
	if create {
		const insert = `INSERT INTO students (id, reg_no, first_name, last_name, dob, joined_date, nic, school, gender, current_class_id,
			address, phone, whatsapp, email, is_active, created_at, updated_at)
			VALUES (:id, :reg_no, :first_name, :last_name, :dob, :joined_date, :nic, :school, :gender, :current_class_id,
			:address, :phone, :whatsapp, :email, :is_active, :created_at, :updated_at)`
		if _, err = tx.NamedExecContext(ctx, insert, student); err != nil {
			return nil, fmt.Errorf("create student: %w", err)
		}
	} else {
		const update = `UPDATE students SET reg_no = :reg_no, first_name = :first_name, last_name = :last_name, dob = :dob,
			joined_date = :joined_date, nic = :nic, school = :school, gender = :gender, current_class_id = :current_class_id,
			address = :address, phone = :phone, whatsapp = :whatsapp, email = :email, is_active = :is_active,
			updated_at = :updated_at WHERE id = :id`
		var res sql.Result
		if res, err = tx.NamedExecContext(ctx, update, student); err != nil {
			return nil, fmt.Errorf("update student: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			err = sql.ErrNoRows
			return nil, err
		}
		if existing, err = lockGuardians(ctx, tx, student.ID); err != nil {
			return nil, err
		}
	}

	if guardians, err = applyGuardianChanges(ctx, tx, student.ID, existing, changes, "", now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit student tx: %w", err)
	}
	return guardians, nil
}
