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

const classSelect = `SELECT c.id, c.class_code, c.name, c.description, c.class_mode, c.fee_type, c.per_session_fee,
	c.monthly_fee, c.class_teacher_id, c.capacity, c.active, c.created_at, c.updated_at,
	t.title AS teacher_title, t.first_name AS teacher_first_name, t.last_name AS teacher_last_name
	FROM tuition_classes c LEFT JOIN teachers t ON t.id = c.class_teacher_id`

type classRow struct {
	models.TuitionClass
	TeacherTitle     sql.NullString `db:"teacher_title"`
	TeacherFirstName sql.NullString `db:"teacher_first_name"`
	TeacherLastName  sql.NullString `db:"teacher_last_name"`
}

func (row classRow) toModel() models.TuitionClass {
	class := row.TuitionClass
	if class.ClassTeacherID != nil && row.TeacherFirstName.Valid {
		summary := models.Teacher{
			ID:        *class.ClassTeacherID,
			Title:     models.TeacherTitle(row.TeacherTitle.String),
			FirstName: row.TeacherFirstName.String,
			LastName:  row.TeacherLastName.String,
		}.Summary()
		class.ClassTeacher = &summary
	}
	return class
}

// ClassRepository manages persistence for tuition classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching filter criteria with their class teacher embedded.
func (r *ClassRepository) List(ctx context.Context, filter models.TuitionClassFilter) ([]models.TuitionClass, int, error) {
	var q listQuery
	if filter.Active != nil {
		q.where("c.active = $%d", *filter.Active)
	}
	if filter.ClassTeacherID != "" {
		q.where("c.class_teacher_id = $%d", filter.ClassTeacherID)
	}
	q.search(filter.Search, "c.class_code", "c.name")

	where := " WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"class_code": "c.class_code",
		"name":       "c.name",
		"created_at": "c.created_at",
	}, "c.class_code")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d", classSelect, where, order, limit, offset)
	var rows []classRow
	if err := r.db.SelectContext(ctx, &rows, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tuition_classes c"+where, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	classes := make([]models.TuitionClass, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toModel())
	}
	return classes, total, nil
}

// FindByID returns a class with its class teacher embedded.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.TuitionClass, error) {
	var row classRow
	if err := r.db.GetContext(ctx, &row, classSelect+" WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	class := row.toModel()
	return &class, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, class *models.TuitionClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO tuition_classes (id, class_code, name, description, class_mode, fee_type, per_session_fee, monthly_fee, class_teacher_id, capacity, active, created_at, updated_at)
		VALUES (:id, :class_code, :name, :description, :class_mode, :fee_type, :per_session_fee, :monthly_fee, :class_teacher_id, :capacity, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.TuitionClass) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tuition_classes SET class_code = :class_code, name = :name, description = :description, class_mode = :class_mode,
		fee_type = :fee_type, per_session_fee = :per_session_fee, monthly_fee = :monthly_fee, class_teacher_id = :class_teacher_id,
		capacity = :capacity, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// LatestCode returns the class code of the most recently created class.
func (r *ClassRepository) LatestCode(ctx context.Context) (string, error) {
	return latestCode(ctx, r.db, "tuition_classes", "class_code")
}

// Delete removes a class. Students whose current class it is block the delete.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "tuition_classes", id)
}

// Dependents lists students whose current class is id.
func (r *ClassRepository) Dependents(ctx context.Context, id string) ([]models.Dependent, error) {
	const query = `SELECT 'students' AS relation, id, reg_no AS code, TRIM(first_name || ' ' || last_name) AS label
		FROM students WHERE current_class_id = $1 ORDER BY reg_no`
	var deps []models.Dependent
	if err := r.db.SelectContext(ctx, &deps, query, id); err != nil {
		return nil, fmt.Errorf("list class dependents: %w", err)
	}
	return deps, nil
}

// Alternatives lists every other class as a reassignment candidate.
func (r *ClassRepository) Alternatives(ctx context.Context, id string) ([]models.DeletionCandidate, error) {
	const query = `SELECT id, class_code AS code, name AS label FROM tuition_classes WHERE id <> $1 ORDER BY class_code`
	var candidates []models.DeletionCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, id); err != nil {
		return nil, fmt.Errorf("list class alternatives: %w", err)
	}
	return candidates, nil
}

// ReassignAndDelete moves the students placed in the class to the target class and deletes it.
func (r *ClassRepository) ReassignAndDelete(ctx context.Context, id string, targets models.ReassignmentTargets) (map[string]int, error) {
	steps := []reassignStep{{
		relation:    models.RelationStudents,
		targetTable: "tuition_classes",
		update:      `UPDATE students SET current_class_id = $1, updated_at = $3 WHERE current_class_id = $2`,
	}}
	return reassignAndDelete(ctx, r.db, "tuition_classes", id, steps, targets)
}

// Headcounts returns the active students placed in every class.
func (r *ClassRepository) Headcounts(ctx context.Context) ([]models.ClassHeadcount, error) {
	const query = `SELECT c.id AS class_id, c.class_code, c.name, c.capacity,
		COUNT(s.id) FILTER (WHERE s.is_active) AS active_students
		FROM tuition_classes c LEFT JOIN students s ON s.current_class_id = c.id
		GROUP BY c.id, c.class_code, c.name, c.capacity ORDER BY c.class_code`
	var counts []models.ClassHeadcount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("class headcounts: %w", err)
	}
	return counts, nil
}
