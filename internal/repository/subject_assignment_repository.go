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

const assignmentSelect = `SELECT sa.id, sa.assign_code, sa.subject_id, sa.teacher_id, sa.start_date, sa.end_date, sa.notes,
	sa.created_at, sa.updated_at, s.subject_code, s.name AS subject_name,
	t.title AS teacher_title, t.first_name AS teacher_first_name, t.last_name AS teacher_last_name
	FROM subject_assignments sa
	JOIN subjects s ON s.id = sa.subject_id
	JOIN teachers t ON t.id = sa.teacher_id`

type assignmentRow struct {
	models.SubjectAssignment
	SubjectCode      string         `db:"subject_code"`
	SubjectName      string         `db:"subject_name"`
	TeacherTitle     sql.NullString `db:"teacher_title"`
	TeacherFirstName string         `db:"teacher_first_name"`
	TeacherLastName  string         `db:"teacher_last_name"`
}

func (row assignmentRow) toModel() models.SubjectAssignment {
	a := row.SubjectAssignment
	a.Subject = &models.SubjectSummary{ID: a.SubjectID, SubjectCode: row.SubjectCode, Name: row.SubjectName}
	teacher := models.Teacher{
		ID:        a.TeacherID,
		Title:     models.TeacherTitle(row.TeacherTitle.String),
		FirstName: row.TeacherFirstName,
		LastName:  row.TeacherLastName,
	}.Summary()
	a.Teacher = &teacher
	return a
}

// SubjectAssignmentRepository manages persistence for subject assignments.
type SubjectAssignmentRepository struct {
	db *sqlx.DB
}

// NewSubjectAssignmentRepository constructs the repository.
func NewSubjectAssignmentRepository(db *sqlx.DB) *SubjectAssignmentRepository {
	return &SubjectAssignmentRepository{db: db}
}

// List returns assignments with subject and teacher summaries embedded.
func (r *SubjectAssignmentRepository) List(ctx context.Context, filter models.SubjectAssignmentFilter) ([]models.SubjectAssignment, int, error) {
	var q listQuery
	if filter.SubjectID != "" {
		q.where("sa.subject_id = $%d", filter.SubjectID)
	}
	if filter.TeacherID != "" {
		q.where("sa.teacher_id = $%d", filter.TeacherID)
	}
	q.search(filter.Search, "sa.assign_code", "s.name", "t.first_name", "t.last_name")

	where := " WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"start_date":  "sa.start_date",
		"assign_code": "sa.assign_code",
		"created_at":  "sa.created_at",
	}, "sa.start_date")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d", assignmentSelect, where, order, limit, offset)
	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list subject assignments: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM subject_assignments sa
	JOIN subjects s ON s.id = sa.subject_id
	JOIN teachers t ON t.id = sa.teacher_id` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count subject assignments: %w", err)
	}

	assignments := make([]models.SubjectAssignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.toModel())
	}
	return assignments, total, nil
}

// FindByID returns an assignment with its summaries embedded.
func (r *SubjectAssignmentRepository) FindByID(ctx context.Context, id string) (*models.SubjectAssignment, error) {
	var row assignmentRow
	if err := r.db.GetContext(ctx, &row, assignmentSelect+" WHERE sa.id = $1", id); err != nil {
		return nil, err
	}
	a := row.toModel()
	return &a, nil
}

// Create inserts an assignment. A second row for the same subject and teacher fails with a unique violation.
func (r *SubjectAssignmentRepository) Create(ctx context.Context, a *models.SubjectAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	const query = `INSERT INTO subject_assignments (id, assign_code, subject_id, teacher_id, start_date, end_date, notes, created_at, updated_at)
		VALUES (:id, :assign_code, :subject_id, :teacher_id, :start_date, :end_date, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create subject assignment: %w", err)
	}
	return nil
}

// Update modifies an assignment.
func (r *SubjectAssignmentRepository) Update(ctx context.Context, a *models.SubjectAssignment) error {
	a.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subject_assignments SET assign_code = :assign_code, subject_id = :subject_id, teacher_id = :teacher_id,
		start_date = :start_date, end_date = :end_date, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("update subject assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *SubjectAssignmentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "subject_assignments", id)
}

// LatestCode returns the code of the most recently created assignment.
func (r *SubjectAssignmentRepository) LatestCode(ctx context.Context) (string, error) {
	return latestCode(ctx, r.db, "subject_assignments", "assign_code")
}
