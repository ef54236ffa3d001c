package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
}

// SubjectRequest captures fields for creating or updating subjects.
type SubjectRequest struct {
	SubjectCode string `json:"subject_code" validate:"required,max=30"`
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"max=1000"`
}

// SubjectService manages subjects.
type SubjectService struct {
	repo        subjectRepository
	assignments assignmentLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, assignments assignmentLister, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// List returns subjects and pagination metadata.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list subjects")
	}
	return subjects, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a subject with the teachers assigned to it.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "subject")
	}
	assignments, _, err := s.assignments.List(ctx, models.SubjectAssignmentFilter{SubjectID: id, PageSize: nestedPageSize})
	if err != nil {
		return nil, internalError(err, "failed to load subject assignments")
	}
	if assignments == nil {
		assignments = []models.SubjectAssignment{}
	}
	return &models.SubjectDetail{Subject: *subject, Assignments: assignments}, nil
}

// Create stores a new subject.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{
		SubjectCode: strings.TrimSpace(req.SubjectCode),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, writeError(err, "create", "subject")
	}
	return subject, nil
}

// Update modifies a subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "subject")
	}
	subject.SubjectCode = strings.TrimSpace(req.SubjectCode)
	subject.Name = strings.TrimSpace(req.Name)
	subject.Description = strings.TrimSpace(req.Description)
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, writeError(err, "update", "subject")
	}
	return subject, nil
}
