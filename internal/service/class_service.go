package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
)

type classRepository interface {
	List(ctx context.Context, filter models.TuitionClassFilter) ([]models.TuitionClass, int, error)
	FindByID(ctx context.Context, id string) (*models.TuitionClass, error)
	Create(ctx context.Context, class *models.TuitionClass) error
	Update(ctx context.Context, class *models.TuitionClass) error
}

type classStudentLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// ClassRequest is the payload for creating or updating a tuition class.
type ClassRequest struct {
	ClassCode      string           `json:"class_code" validate:"required,max=30"`
	Name           string           `json:"name" validate:"required,max=150"`
	Description    string           `json:"description" validate:"max=1000"`
	ClassMode      models.ClassMode `json:"class_mode" validate:"omitempty,oneof=group one_to_one online home"`
	FeeType        models.FeeType   `json:"fee_type" validate:"omitempty,oneof=per_session monthly term"`
	PerSessionFee  float64          `json:"per_session_fee" validate:"gte=0"`
	MonthlyFee     float64          `json:"monthly_fee" validate:"gte=0"`
	ClassTeacherID *string          `json:"class_teacher_id" validate:"omitempty,uuid"`
	Capacity       *int             `json:"capacity" validate:"omitempty,gte=0"`
	Active         *bool            `json:"active"`
}

// ClassService manages tuition classes.
type ClassService struct {
	repo      classRepository
	students  classStudentLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, students classStudentLister, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns classes with their class teacher summary.
func (s *ClassService) List(ctx context.Context, filter models.TuitionClassFilter) ([]models.TuitionClass, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list classes")
	}
	return classes, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a class with the active students currently placed in it.
func (s *ClassService) Get(ctx context.Context, id string) (*models.TuitionClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "class")
	}
	students, err := s.students.ListByClass(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load class students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return &models.TuitionClassDetail{TuitionClass: *class, Students: students}, nil
}

// Create adds a class. Mode, fee type and capacity fall back to their defaults.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.TuitionClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	class := &models.TuitionClass{
		ClassMode: models.ClassModeGroup,
		FeeType:   models.FeeTypeMonthly,
		Capacity:  models.DefaultClassCapacity,
		Active:    true,
	}
	applyClassRequest(class, req)
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, writeError(err, "create", "class")
	}
	s.logger.Debug("class created", zap.String("class_id", class.ID), zap.String("class_code", class.ClassCode))
	return class, nil
}

// Update modifies a class.
func (s *ClassService) Update(ctx context.Context, id string, req ClassRequest) (*models.TuitionClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "class")
	}
	applyClassRequest(class, req)
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, writeError(err, "update", "class")
	}
	return class, nil
}

func applyClassRequest(class *models.TuitionClass, req ClassRequest) {
	class.ClassCode = strings.TrimSpace(req.ClassCode)
	class.Name = strings.TrimSpace(req.Name)
	class.Description = strings.TrimSpace(req.Description)
	if req.ClassMode != "" {
		class.ClassMode = req.ClassMode
	}
	if req.FeeType != "" {
		class.FeeType = req.FeeType
	}
	class.PerSessionFee = req.PerSessionFee
	class.MonthlyFee = req.MonthlyFee
	class.ClassTeacherID = normalizeOptional(req.ClassTeacherID)
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	class.Active = boolOr(req.Active, class.Active)
	class.ClassTeacher = nil
}
