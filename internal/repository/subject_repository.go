package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

const subjectColumns = "id, subject_code, name, description, created_at, updated_at"

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching the filter.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	var q listQuery
	q.search(filter.Search, "subject_code", "name")

	base := "FROM subjects WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"subject_code": "subject_code",
		"name":         "name",
		"created_at":   "created_at",
	}, "subject_code")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", subjectColumns, base, order, limit, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, "SELECT "+subjectColumns+" FROM subjects WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, subject_code, name, description, created_at, updated_at)
		VALUES (:id, :subject_code, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET subject_code = :subject_code, name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// LatestCode returns the code of the most recently created subject.
func (r *SubjectRepository) LatestCode(ctx context.Context) (string, error) {
	return latestCode(ctx, r.db, "subjects", "subject_code")
}

// Delete removes a subject. Assignments referencing it block the delete.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "subjects", id)
}

// Dependents lists the assignments that reference the subject.
func (r *SubjectRepository) Dependents(ctx context.Context, id string) ([]models.Dependent, error) {
	const query = `SELECT 'assignments' AS relation, sa.id, sa.assign_code AS code,
		TRIM(t.first_name || ' ' || t.last_name) AS label
		FROM subject_assignments sa JOIN teachers t ON t.id = sa.teacher_id
		WHERE sa.subject_id = $1 ORDER BY sa.assign_code`
	var deps []models.Dependent
	if err := r.db.SelectContext(ctx, &deps, query, id); err != nil {
		return nil, fmt.Errorf("list subject dependents: %w", err)
	}
	return deps, nil
}

// Alternatives lists every other subject as a reassignment candidate.
func (r *SubjectRepository) Alternatives(ctx context.Context, id string) ([]models.DeletionCandidate, error) {
	const query = `SELECT id, subject_code AS code, name AS label FROM subjects WHERE id <> $1 ORDER BY subject_code`
	var candidates []models.DeletionCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, id); err != nil {
		return nil, fmt.Errorf("list subject alternatives: %w", err)
	}
	return candidates, nil
}

// ReassignAndDelete moves the subject's assignments to the target subject and deletes it. A target
// that already has an assignment for one of the same teachers fails with a unique violation.
func (r *SubjectRepository) ReassignAndDelete(ctx context.Context, id string, targets models.ReassignmentTargets) (map[string]int, error) {
	steps := []reassignStep{{
		relation:    models.RelationAssignments,
		targetTable: "subjects",
		update:      `UPDATE subject_assignments SET subject_id = $1, updated_at = $3 WHERE subject_id = $2`,
	}}
	return reassignAndDelete(ctx, r.db, "subjects", id, steps, targets)
}
