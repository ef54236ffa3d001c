package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/pkg/database"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

// constraintMessages maps unique constraints to the message shown on conflict.
var constraintMessages = map[string]string{
	"subject_assignments_subject_teacher_key": "An assignment for this subject and teacher already exists.",
	"subject_assignments_assign_code_key":     "assignment code already exists",
	"tuition_classes_class_code_key":          "class code already exists",
	"subjects_subject_code_key":               "subject code already exists",
	"students_reg_no_key":                     "registration number already exists",
	"enrollments_student_class_start_key":     "student is already enrolled in this class from that start date",
	"users_email_key":                         "email already used",
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// loadError translates a lookup failure for entity.
func loadError(err error, entity string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return internalError(err, "failed to load "+entity)
}

// writeError translates an insert or update failure. Unique violations become conflicts and
// missing parents become validation errors.
func writeError(err error, action, entity string) *appErrors.Error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	case database.IsUniqueViolation(err):
		msg, ok := constraintMessages[database.ConstraintName(err)]
		if !ok {
			msg = entity + " already exists"
		}
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msg)
	case database.IsForeignKeyViolation(err):
		return validationError(err, "referenced record does not exist")
	default:
		return internalError(err, "failed to "+action+" "+entity)
	}
}

func newPagination(page, size, total int) *models.Pagination {
	return models.NewPagination(page, size, total)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseOptionalDate parses a YYYY-MM-DD string; nil or blank gives nil.
func parseOptionalDate(value *string) (*models.Date, error) {
	v := normalizeOptional(value)
	if v == nil {
		return nil, nil
	}
	d, err := models.ParseDate(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
