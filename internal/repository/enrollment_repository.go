package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

const enrollmentSelect = `SELECT e.id, e.student_id, e.tuition_class_id, e.start_date, e.end_date, e.active, e.fee_override,
	e.created_at, e.updated_at, s.reg_no, s.first_name, s.last_name, c.class_code, c.name AS class_name
	FROM enrollments e
	JOIN students s ON s.id = e.student_id
	JOIN tuition_classes c ON c.id = e.tuition_class_id`

type enrollmentRow struct {
	models.Enrollment
	RegNo     string `db:"reg_no"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	ClassCode string `db:"class_code"`
	ClassName string `db:"class_name"`
}

func (row enrollmentRow) toModel() models.Enrollment {
	e := row.Enrollment
	e.Student = &models.StudentSummary{ID: e.StudentID, RegNo: row.RegNo, FirstName: row.FirstName, LastName: row.LastName}
	e.TuitionClass = &models.ClassSummary{ID: e.TuitionClassID, ClassCode: row.ClassCode, Name: row.ClassName}
	return e
}

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments with student and class summaries embedded.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error) {
	var q listQuery
	if filter.StudentID != "" {
		q.where("e.student_id = $%d", filter.StudentID)
	}
	if filter.TuitionClassID != "" {
		q.where("e.tuition_class_id = $%d", filter.TuitionClassID)
	}
	if filter.Active != nil {
		q.where("e.active = $%d", *filter.Active)
	}
	q.search(filter.Search, "s.reg_no", "c.class_code")

	where := " WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"start_date": "e.start_date",
		"created_at": "e.created_at",
	}, "e.start_date")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d", enrollmentSelect, where, order, limit, offset)
	var rows []enrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM enrollments e
	JOIN students s ON s.id = e.student_id
	JOIN tuition_classes c ON c.id = e.tuition_class_id` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	enrollments := make([]models.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toModel())
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment with its summaries embedded.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var row enrollmentRow
	if err := r.db.GetContext(ctx, &row, enrollmentSelect+" WHERE e.id = $1", id); err != nil {
		return nil, err
	}
	e := row.toModel()
	return &e, nil
}

// Create inserts an enrollment. The (student, class, start_date) triple is unique.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	const query = `INSERT INTO enrollments (id, student_id, tuition_class_id, start_date, end_date, active, fee_override, created_at, updated_at)
		VALUES (:id, :student_id, :tuition_class_id, :start_date, :end_date, :active, :fee_override, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update modifies an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, e *models.Enrollment) error {
	e.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET student_id = :student_id, tuition_class_id = :tuition_class_id, start_date = :start_date,
		end_date = :end_date, active = :active, fee_override = :fee_override, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "enrollments", id)
}
