package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
}

type classLister interface {
	List(ctx context.Context, filter models.TuitionClassFilter) ([]models.TuitionClass, int, error)
}

type assignmentLister interface {
	List(ctx context.Context, filter models.SubjectAssignmentFilter) ([]models.SubjectAssignment, int, error)
}

// nestedPageSize bounds the related rows embedded in detail views.
const nestedPageSize = 100

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	Title     models.TeacherTitle `json:"title" validate:"required,oneof=mr ms mrs rev"`
	FirstName string              `json:"first_name" validate:"required,max=100"`
	LastName  string              `json:"last_name" validate:"required,max=100"`
	DOB       *string             `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Phone     *string             `json:"phone" validate:"omitempty,max=30"`
	WhatsApp  *string             `json:"whatsapp" validate:"omitempty,max=30"`
	Email     *string             `json:"email" validate:"omitempty,email"`
	UserID    *string             `json:"user_id" validate:"omitempty,uuid"`
	IsActive  *bool               `json:"is_active"`
}

func (r *CreateTeacherRequest) normalize() {
	r.Email = normalizeOptional(r.Email)
}

// UpdateTeacherRequest represents payload for updating teachers.
type UpdateTeacherRequest CreateTeacherRequest

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo        teacherRepository
	classes     classLister
	assignments assignmentLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, classes classLister, assignments assignmentLister, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, classes: classes, assignments: assignments, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list teachers")
	}
	return teachers, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a teacher with the classes they lead and their subject assignments.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "teacher")
	}
	classes, _, err := s.classes.List(ctx, models.TuitionClassFilter{ClassTeacherID: id, PageSize: nestedPageSize})
	if err != nil {
		return nil, internalError(err, "failed to load teacher classes")
	}
	assignments, _, err := s.assignments.List(ctx, models.SubjectAssignmentFilter{TeacherID: id, PageSize: nestedPageSize})
	if err != nil {
		return nil, internalError(err, "failed to load teacher assignments")
	}
	if classes == nil {
		classes = []models.TuitionClass{}
	}
	if assignments == nil {
		assignments = []models.SubjectAssignment{}
	}
	return &models.TeacherDetail{Teacher: *teacher, Classes: classes, Assignments: assignments}, nil
}

// Create registers a new teacher record.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher := &models.Teacher{IsActive: true}
	if err := applyTeacherRequest(teacher, req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, writeError(err, "create", "teacher")
	}
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	in := CreateTeacherRequest(req)
	in.normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "teacher")
	}
	if err := applyTeacherRequest(teacher, in); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, writeError(err, "update", "teacher")
	}
	return teacher, nil
}

func applyTeacherRequest(teacher *models.Teacher, req CreateTeacherRequest) error {
	dob, err := parseOptionalDate(req.DOB)
	if err != nil {
		return err
	}
	teacher.Title = req.Title
	teacher.FirstName = strings.TrimSpace(req.FirstName)
	teacher.LastName = strings.TrimSpace(req.LastName)
	teacher.DOB = dob
	teacher.Phone = normalizeOptional(req.Phone)
	teacher.WhatsApp = normalizeOptional(req.WhatsApp)
	teacher.Email = normalizeOptional(req.Email)
	teacher.UserID = normalizeOptional(req.UserID)
	teacher.IsActive = boolOr(req.IsActive, teacher.IsActive)
	return nil
}
