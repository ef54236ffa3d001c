package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

const teacherColumns = "id, title, first_name, last_name, dob, phone, whatsapp, email, user_id, is_active, created_at, updated_at"

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching filters along with total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var q listQuery
	if filter.Active != nil {
		q.where("is_active = $%d", *filter.Active)
	}
	q.search(filter.Search, "first_name", "last_name", "email")

	base := "FROM teachers WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"last_name":  "last_name",
		"first_name": "first_name",
		"id":         "id",
		"created_at": "created_at",
	}, "last_name, first_name")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", teacherColumns, base, order, limit, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := "SELECT " + teacherColumns + " FROM teachers WHERE id = $1"
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, title, first_name, last_name, dob, phone, whatsapp, email, user_id, is_active, created_at, updated_at)
		VALUES (:id, :title, :first_name, :last_name, :dob, :phone, :whatsapp, :email, :user_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies an existing teacher record.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET title = :title, first_name = :first_name, last_name = :last_name, dob = :dob, phone = :phone,
		whatsapp = :whatsapp, email = :email, user_id = :user_id, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher. Classes and assignments still pointing at it make this fail with a
// foreign key violation.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "teachers", id)
}

// Dependents lists the classes and subject assignments that reference the teacher.
func (r *TeacherRepository) Dependents(ctx context.Context, id string) ([]models.Dependent, error) {
	const query = `SELECT 'classes' AS relation, c.id, c.class_code AS code, c.name AS label
		FROM tuition_classes c WHERE c.class_teacher_id = $1
		UNION ALL
		SELECT 'assignments' AS relation, sa.id, sa.assign_code AS code, s.name AS label
		FROM subject_assignments sa JOIN subjects s ON s.id = sa.subject_id WHERE sa.teacher_id = $1
		ORDER BY relation, code`
	var deps []models.Dependent
	if err := r.db.SelectContext(ctx, &deps, query, id); err != nil {
		return nil, fmt.Errorf("list teacher dependents: %w", err)
	}
	return deps, nil
}

// Alternatives lists every other teacher as a reassignment candidate.
func (r *TeacherRepository) Alternatives(ctx context.Context, id string) ([]models.DeletionCandidate, error) {
	const query = `SELECT id, '' AS code, TRIM(first_name || ' ' || last_name) AS label
		FROM teachers WHERE id <> $1 ORDER BY last_name, first_name`
	var candidates []models.DeletionCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, id); err != nil {
		return nil, fmt.Errorf("list teacher alternatives: %w", err)
	}
	return candidates, nil
}

// ReassignAndDelete moves classes and assignments to their targets and deletes the teacher
// atomically. Relations without a target are left untouched, so remaining references still block
// the delete and roll everything back.
func (r *TeacherRepository) ReassignAndDelete(ctx context.Context, id string, targets models.ReassignmentTargets) (map[string]int, error) {
	steps := []reassignStep{
		{
			relation:    models.RelationClasses,
			targetTable: "teachers",
			update:      `UPDATE tuition_classes SET class_teacher_id = $1, updated_at = $3 WHERE class_teacher_id = $2`,
		},
		{
			relation:    models.RelationAssignments,
			targetTable: "teachers",
			update:      `UPDATE subject_assignments SET teacher_id = $1, updated_at = $3 WHERE teacher_id = $2`,
		},
	}
	return reassignAndDelete(ctx, r.db, "teachers", id, steps, targets)
}
