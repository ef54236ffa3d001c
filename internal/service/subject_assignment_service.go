package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/pkg/events"
)

type subjectAssignmentRepository interface {
	List(ctx context.Context, filter models.SubjectAssignmentFilter) ([]models.SubjectAssignment, int, error)
	FindByID(ctx context.Context, id string) (*models.SubjectAssignment, error)
	Create(ctx context.Context, a *models.SubjectAssignment) error
	Update(ctx context.Context, a *models.SubjectAssignment) error
	Delete(ctx context.Context, id string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, evt events.Event)
}

// SubjectAssignmentRequest links a teacher to a subject.
type SubjectAssignmentRequest struct {
	AssignCode string  `json:"assign_code" validate:"required,max=30"`
	SubjectID  string  `json:"subject_id" validate:"required,uuid"`
	TeacherID  string  `json:"teacher_id" validate:"required,uuid"`
	StartDate  *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Notes      string  `json:"notes" validate:"max=2000"`
}

// SubjectAssignmentService manages teacher-to-subject assignments.
type SubjectAssignmentService struct {
	repo      subjectAssignmentRepository
	publisher eventPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectAssignmentService constructs a SubjectAssignmentService. A nil publisher disables
// notifications.
func NewSubjectAssignmentService(repo subjectAssignmentRepository, publisher eventPublisher, validate *validator.Validate, logger *zap.Logger) *SubjectAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectAssignmentService{repo: repo, publisher: publisher, validator: validate, logger: logger}
}

// List returns assignments with subject and teacher summaries.
func (s *SubjectAssignmentService) List(ctx context.Context, filter models.SubjectAssignmentFilter) ([]models.SubjectAssignment, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list subject assignments")
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a single assignment.
func (s *SubjectAssignmentService) Get(ctx context.Context, id string) (*models.SubjectAssignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "subject assignment")
	}
	return a, nil
}

// Create stores an assignment and, once committed, announces it on the bus.
func (s *SubjectAssignmentService) Create(ctx context.Context, req SubjectAssignmentRequest) (*models.SubjectAssignment, error) {
	a := &models.SubjectAssignment{}
	if err := s.fill(a, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, writeError(err, "create", "subject assignment")
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, events.NewEvent(events.SubjectAssignedEvent, events.SubjectAssigned{
			TeacherID:    a.TeacherID,
			SubjectID:    a.SubjectID,
			AssignmentID: a.ID,
		}))
	}
	return s.reload(ctx, a), nil
}

// Update modifies an assignment. No event is emitted for updates.
func (s *SubjectAssignmentService) Update(ctx context.Context, id string, req SubjectAssignmentRequest) (*models.SubjectAssignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "subject assignment")
	}
	if err := s.fill(a, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, writeError(err, "update", "subject assignment")
	}
	return s.reload(ctx, a), nil
}

// reload fetches the nested subject and teacher summaries after a write.
func (s *SubjectAssignmentService) reload(ctx context.Context, a *models.SubjectAssignment) *models.SubjectAssignment {
	full, err := s.repo.FindByID(ctx, a.ID)
	if err != nil {
		s.logger.Warn("failed to reload subject assignment", zap.String("assignment_id", a.ID), zap.Error(err))
		return a
	}
	return full
}

// Delete removes an assignment.
func (s *SubjectAssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "subject assignment")
	}
	return nil
}

func (s *SubjectAssignmentService) fill(a *models.SubjectAssignment, req SubjectAssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid subject assignment payload")
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return validationError(err, "invalid start date")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return validationError(err, "invalid end date")
	}
	if start != nil && end != nil && end.Time.Before(start.Time) {
		return validationError(nil, "end date must not be before start date")
	}
	a.AssignCode = strings.TrimSpace(req.AssignCode)
	a.SubjectID = req.SubjectID
	a.TeacherID = req.TeacherID
	a.StartDate = start
	a.EndDate = end
	a.Notes = strings.TrimSpace(req.Notes)
	a.Subject, a.Teacher = nil, nil
	return nil
}
