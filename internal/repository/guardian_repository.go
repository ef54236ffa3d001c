package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

var (
	// ErrNoGuardians is returned when a write would leave a student without guardians.
	ErrNoGuardians = errors.New("student must keep at least one guardian")
	// ErrGuardianNotOwned is returned when a guardian id does not belong to the student being saved.
	ErrGuardianNotOwned = errors.New("guardian does not belong to student")
)

const guardianColumns = "id, student_id, name, relationship, phone, whatsapp, email, is_primary, created_at"

// GuardianChanges is the guardian-set mutation saved together with a student. Added guardians
// are inserted in order and get increasing creation times.
type GuardianChanges struct {
	Added   []models.Guardian
	Updated []models.Guardian
	Removed []string
}

// GuardianRepository manages guardians. Every write re-establishes the single primary guardian of
// the owning student inside the same transaction.
type GuardianRepository struct {
	db *sqlx.DB
}

// NewGuardianRepository constructs a GuardianRepository.
func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// List returns guardians matching the filter.
func (r *GuardianRepository) List(ctx context.Context, filter models.GuardianFilter) ([]models.Guardian, int, error) {
	var q listQuery
	if filter.StudentID != "" {
		q.where("g.student_id = $%d", filter.StudentID)
	}
	q.search(filter.Search, "g.name", "g.phone", "g.email", "st.reg_no")

	from := " FROM guardians g JOIN students st ON st.id = g.student_id WHERE 1=1" + q.clause()
	order := orderBy(filter.SortBy, filter.SortOrder, map[string]string{
		"name":       "g.name",
		"created_at": "g.created_at",
	}, "g.name")
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT g.id, g.student_id, g.name, g.relationship, g.phone, g.whatsapp, g.email, g.is_primary, g.created_at%s
		ORDER BY %s LIMIT %d OFFSET %d`, from, order, limit, offset)
	var guardians []models.Guardian
	if err := r.db.SelectContext(ctx, &guardians, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list guardians: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+from, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count guardians: %w", err)
	}
	return guardians, total, nil
}

// FindByID fetches a guardian.
func (r *GuardianRepository) FindByID(ctx context.Context, id string) (*models.Guardian, error) {
	var g models.Guardian
	if err := r.db.GetContext(ctx, &g, "SELECT "+guardianColumns+" FROM guardians WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByStudents groups the guardians of several students, oldest first.
func (r *GuardianRepository) ListByStudents(ctx context.Context, studentIDs []string) (map[string][]models.Guardian, error) {
	result := make(map[string][]models.Guardian, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	query := "SELECT " + guardianColumns + " FROM guardians WHERE student_id = ANY($1) ORDER BY created_at, id"
	var guardians []models.Guardian
	if err := r.db.SelectContext(ctx, &guardians, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list guardians by student: %w", err)
	}
	for _, g := range guardians {
		result[g.StudentID] = append(result[g.StudentID], g)
	}
	return result, nil
}

// Create adds a guardian. A guardian created with IsPrimary takes over the primary flag.
func (r *GuardianRepository) Create(ctx context.Context, g *models.Guardian) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return r.write(ctx, g.StudentID, GuardianChanges{Added: []models.Guardian{*g}}, preferredPrimary(g), g)
}

// Update modifies a guardian. Setting IsPrimary makes it the primary; clearing it on the current
// primary hands the flag to the earliest guardian.
func (r *GuardianRepository) Update(ctx context.Context, g *models.Guardian) error {
	return r.write(ctx, g.StudentID, GuardianChanges{Updated: []models.Guardian{*g}}, preferredPrimary(g), g)
}

// Delete removes a guardian unless it is the student's last one.
func (r *GuardianRepository) Delete(ctx context.Context, studentID, id string) error {
	return r.write(ctx, studentID, GuardianChanges{Removed: []string{id}}, "", nil)
}

func (r *GuardianRepository) write(ctx context.Context, studentID string, changes GuardianChanges, prefer string, out *models.Guardian) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin guardian tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := lockGuardians(ctx, tx, studentID)
	if err != nil {
		return err
	}
	final, err := applyGuardianChanges(ctx, tx, studentID, existing, changes, prefer, time.Now().UTC())
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit guardian tx: %w", err)
	}

	if out != nil {
		for _, g := range final {
			if g.ID == out.ID {
				*out = g
			}
		}
	}
	return nil
}

func preferredPrimary(g *models.Guardian) string {
	if g.IsPrimary {
		return g.ID
	}
	return ""
}

func lockGuardians(ctx context.Context, tx *sqlx.Tx, studentID string) ([]models.Guardian, error) {
	query := "SELECT " + guardianColumns + " FROM guardians WHERE student_id = $1 ORDER BY created_at, id FOR UPDATE"
	var guardians []models.Guardian
	if err := tx.SelectContext(ctx, &guardians, query, studentID); err != nil {
		return nil, fmt.Errorf("lock guardians: %w", err)
	}
	return guardians, nil
}

// applyGuardianChanges builds the post-mutation guardian set, rejects an empty set, resolves the
// primary flag and writes the result. Flags are cleared before any row is written so the partial
// unique index on primary guardians never sees two primaries.
func applyGuardianChanges(ctx context.Context, tx *sqlx.Tx, studentID string, existing []models.Guardian, changes GuardianChanges, prefer string, now time.Time) ([]models.Guardian, error) {
	known := make(map[string]bool, len(existing))
	for _, g := range existing {
		known[g.ID] = true
	}

	removed := make(map[string]bool, len(changes.Removed))
	for _, id := range changes.Removed {
		if !known[id] {
			return nil, fmt.Errorf("remove guardian %s: %w", id, ErrGuardianNotOwned)
		}
		removed[id] = true
	}

	updates := make(map[string]models.Guardian, len(changes.Updated))
	for _, g := range changes.Updated {
		if !known[g.ID] {
			return nil, fmt.Errorf("update guardian %s: %w", g.ID, ErrGuardianNotOwned)
		}
		g.StudentID = studentID
		updates[g.ID] = g
	}

	inserts := make([]models.Guardian, 0, len(changes.Added))
	for i, g := range changes.Added {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		g.StudentID = studentID
		g.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		inserts = append(inserts, g)
	}

	final := make([]models.Guardian, 0, len(existing)+len(inserts))
	for _, g := range existing {
		if removed[g.ID] {
			continue
		}
		if u, ok := updates[g.ID]; ok {
			u.CreatedAt = g.CreatedAt
			g = u
		}
		final = append(final, g)
	}
	final = append(final, inserts...)
	if len(final) == 0 {
		return nil, ErrNoGuardians
	}

	if prefer != "" {
		for i := range final {
			final[i].IsPrimary = final[i].ID == prefer
		}
	}
	models.ResolvePrimaryGuardian(final).Apply(final)

	if len(existing) > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE guardians SET is_primary = FALSE WHERE student_id = $1 AND is_primary`, studentID); err != nil {
			return nil, fmt.Errorf("clear primary guardian: %w", err)
		}
	}
	if len(removed) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM guardians WHERE student_id = $1 AND id = ANY($2)`, studentID, pq.Array(changes.Removed)); err != nil {
			return nil, fmt.Errorf("delete guardians: %w", err)
		}
	}

	const updateQuery = `UPDATE guardians SET name = :name, relationship = :relationship, phone = :phone, whatsapp = :whatsapp,
		email = :email, is_primary = :is_primary WHERE id = :id AND student_id = :student_id`
	const insertQuery = `INSERT INTO guardians (id, student_id, name, relationship, phone, whatsapp, email, is_primary, created_at)
		VALUES (:id, :student_id, :name, :relationship, :phone, :whatsapp, :email, :is_primary, :created_at)`
	for _, g := range final {
		switch {
		case !known[g.ID]:
			if _, err := tx.NamedExecContext(ctx, insertQuery, g); err != nil {
				return nil, fmt.Errorf("insert guardian: %w", err)
			}
		case g.IsPrimary:
			if _, err := tx.NamedExecContext(ctx, updateQuery, g); err != nil {
				return nil, fmt.Errorf("update guardian: %w", err)
			}
		default:
			if _, ok := updates[g.ID]; ok {
				if _, err := tx.NamedExecContext(ctx, updateQuery, g); err != nil {
					return nil, fmt.Errorf("update guardian: %w", err)
				}
			}
		}
	}
	return final, nil
}
