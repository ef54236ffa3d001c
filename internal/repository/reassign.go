package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

// ErrTargetNotFound is returned when a reassignment target does not resolve to a row.
var ErrTargetNotFound = errors.New("reassignment target not found")

// TargetError names the relation whose target could not be resolved.
type TargetError struct {
	Relation string
	TargetID string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s target %s: %s", e.Relation, e.TargetID, ErrTargetNotFound)
}

func (e *TargetError) Unwrap() error { return ErrTargetNotFound }

// reassignStep moves one relation's references from the deleted row to a target row.
// update takes $1 target, $2 source, $3 timestamp.
type reassignStep struct {
	relation    string
	targetTable string
	update      string
}

// reassignAndDelete verifies every supplied target, moves dependents and deletes the source row in
// one transaction. Targets are locked FOR SHARE so they cannot vanish before commit. Nothing is
// written when a target is missing.
func reassignAndDelete(ctx context.Context, db *sqlx.DB, table, id string, steps []reassignStep, targets models.ReassignmentTargets) (moved map[string]int, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reassign %s: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, step := range steps {
		target := targets[step.relation]
		if target == "" {
			continue
		}
		var found string
		lock := fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR SHARE", step.targetTable)
		if err = tx.GetContext(ctx, &found, lock, target); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = &TargetError{Relation: step.relation, TargetID: target}
				return nil, err
			}
			err = fmt.Errorf("lock %s target: %w", step.relation, err)
			return nil, err
		}
	}

	now := time.Now().UTC()
	moved = make(map[string]int)
	for _, step := range steps {
		target := targets[step.relation]
		if target == "" {
			continue
		}
		res, execErr := tx.ExecContext(ctx, step.update, target, id, now)
		if execErr != nil {
			err = fmt.Errorf("reassign %s: %w", step.relation, execErr)
			return nil, err
		}
		n, _ := res.RowsAffected()
		moved[step.relation] = int(n)
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		err = fmt.Errorf("delete %s: %w", table, err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = sql.ErrNoRows
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit reassign %s: %w", table, err)
		return nil, err
	}
	return moved, nil
}

// deleteByID runs a direct delete. Foreign key violations are returned wrapped so callers can
// detect protected references.
func deleteByID(ctx context.Context, db *sqlx.DB, table, id string) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// latestCode returns the code of the most recently created row, or "" when the table is empty.
func latestCode(ctx context.Context, db *sqlx.DB, table, column string) (string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT 1", column, table)
	var code string
	if err := db.GetContext(ctx, &code, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("latest %s: %w", column, err)
	}
	return code, nil
}
