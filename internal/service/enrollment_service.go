package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Create(ctx context.Context, e *models.Enrollment) error
	Update(ctx context.Context, e *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentRequest places a student in a class.
type EnrollmentRequest struct {
	StudentID      string   `json:"student_id" validate:"required,uuid"`
	TuitionClassID string   `json:"tuition_class_id" validate:"required,uuid"`
	StartDate      *string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Active         *bool    `json:"active"`
	FeeOverride    *float64 `json:"fee_override" validate:"omitempty,gte=0"`
}

// EnrollmentService orchestrates enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list enrollments")
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a single enrollment.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "enrollment")
	}
	return e, nil
}

// Create enrolls a student. The start date defaults to today.
func (s *EnrollmentService) Create(ctx context.Context, req EnrollmentRequest, meta models.AuditMeta) (*models.Enrollment, error) {
	e := &models.Enrollment{Active: true, StartDate: models.Today()}
	if err := s.fill(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, writeError(err, "create", "enrollment")
	}
	recordAudit(ctx, s.audit, s.logger, models.AuditActionEnrollmentCreate, "enrollment", e.ID, meta, map[string]string{
		"student_id":       e.StudentID,
		"tuition_class_id": e.TuitionClassID,
		"start_date":       e.StartDate.String(),
	})
	return s.reload(ctx, e), nil
}

// Update modifies an enrollment.
func (s *EnrollmentService) Update(ctx context.Context, id string, req EnrollmentRequest) (*models.Enrollment, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "enrollment")
	}
	if err := s.fill(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, writeError(err, "update", "enrollment")
	}
	return s.reload(ctx, e), nil
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "enrollment")
	}
	return nil
}

func (s *EnrollmentService) reload(ctx context.Context, e *models.Enrollment) *models.Enrollment {
	full, err := s.repo.FindByID(ctx, e.ID)
	if err != nil {
		s.logger.Warn("failed to reload enrollment", zap.String("enrollment_id", e.ID), zap.Error(err))
		return e
	}
	return full
}

func (s *EnrollmentService) fill(e *models.Enrollment, req EnrollmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid enrollment payload")
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return validationError(err, "invalid start date")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return validationError(err, "invalid end date")
	}
	if start != nil {
		e.StartDate = *start
	}
	if end != nil && end.Time.Before(e.StartDate.Time) {
		return validationError(nil, "end date must not be before start date")
	}
	e.StudentID = req.StudentID
	e.TuitionClassID = req.TuitionClassID
	e.EndDate = end
	e.Active = boolOr(req.Active, e.Active)
	e.FeeOverride = req.FeeOverride
	e.Student, e.TuitionClass = nil, nil
	return nil
}
