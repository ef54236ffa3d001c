package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/repository"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	SaveWithGuardians(ctx context.Context, student *models.Student, changes repository.GuardianChanges, create bool) ([]models.Guardian, error)
}

type guardianBatchLoader interface {
	ListByStudents(ctx context.Context, studentIDs []string) (map[string][]models.Guardian, error)
}

// GuardianInput is a guardian nested in a student payload. Entries carrying an id update that
// guardian, entries without one are added.
type GuardianInput struct {
	ID           *string             `json:"id" validate:"omitempty,uuid"`
	Name         string              `json:"name" validate:"required,max=150"`
	Relationship models.Relationship `json:"relationship" validate:"omitempty,oneof=mother father guardian other"`
	Phone        *string             `json:"phone" validate:"omitempty,max=30"`
	WhatsApp     *string             `json:"whatsapp" validate:"omitempty,max=30"`
	Email        *string             `json:"email" validate:"omitempty,email"`
	IsPrimary    bool                `json:"is_primary"`
}

// StudentRequest is the payload for creating or updating a student together with guardians.
type StudentRequest struct {
	RegNo              string          `json:"reg_no" validate:"required,max=30"`
	FirstName          string          `json:"first_name" validate:"required,max=100"`
	LastName           string          `json:"last_name" validate:"required,max=100"`
	DOB                *string         `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	JoinedDate         *string         `json:"joined_date" validate:"omitempty,datetime=2006-01-02"`
	NIC                *string         `json:"nic" validate:"omitempty,max=20"`
	School             *string         `json:"school" validate:"omitempty,max=150"`
	Gender             *models.Gender  `json:"gender" validate:"omitempty,oneof=male female other"`
	CurrentClassID     *string         `json:"current_class_id" validate:"omitempty,uuid"`
	Address            string          `json:"address" validate:"max=500"`
	Phone              *string         `json:"phone" validate:"omitempty,max=30"`
	WhatsApp           *string         `json:"whatsapp" validate:"omitempty,max=30"`
	Email              *string         `json:"email" validate:"omitempty,email"`
	IsActive           *bool           `json:"is_active"`
	Guardians          []GuardianInput `json:"guardians" validate:"dive"`
	RemovedGuardianIDs []string        `json:"removed_guardian_ids" validate:"dive,uuid"`
}

func (r *StudentRequest) normalize() {
	r.Email = normalizeOptional(r.Email)
	if len(r.Guardians) == 0 {
		return
	}
	guardians := make([]GuardianInput, len(r.Guardians))
	for i, g := range r.Guardians {
		g.Email = normalizeOptional(g.Email)
		guardians[i] = g
	}
	r.Guardians = guardians
}

// StudentService handles student use-cases. Guardians are always saved with the student.
type StudentService struct {
	repo      studentRepository
	guardians guardianBatchLoader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, guardians guardianBatchLoader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, guardians: guardians, validator: validate, logger: logger}
}

// List returns students with their guardians embedded.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	ids := make([]string, len(students))
	for i := range students {
		ids[i] = students[i].ID
	}
	byStudent, err := s.guardians.ListByStudents(ctx, ids)
	if err != nil {
		return nil, nil, internalError(err, "failed to load guardians")
	}
	for i := range students {
		students[i].Guardians = byStudent[students[i].ID]
	}
	return students, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a student with guardians.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "student")
	}
	byStudent, err := s.guardians.ListByStudents(ctx, []string{id})
	if err != nil {
		return nil, internalError(err, "failed to load guardians")
	}
	student.Guardians = byStudent[id]
	return student, nil
}

// Create registers a student with at least one guardian in a single transaction.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if len(req.RemovedGuardianIDs) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a new student has no guardians to remove")
	}
	changes := repository.GuardianChanges{}
	for _, in := range req.Guardians {
		if normalizeOptional(in.ID) != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a new student's guardians cannot reference existing ids")
		}
		changes.Added = append(changes.Added, guardianFromInput(in))
	}
	if len(changes.Added) == 0 {
		return nil, appErrors.Clone(appErrors.ErrGuardianRequired, "")
	}

	student := &models.Student{IsActive: true, JoinedDate: models.Today()}
	if err := applyStudentRequest(student, req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	return s.save(ctx, student, changes, true)
}

// Update modifies a student and applies guardian additions, edits and removals atomically.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "student")
	}
	if err := applyStudentRequest(student, req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	changes := repository.GuardianChanges{Removed: req.RemovedGuardianIDs}
	for _, in := range req.Guardians {
		g := guardianFromInput(in)
		if g.ID != "" {
			changes.Updated = append(changes.Updated, g)
			continue
		}
		changes.Added = append(changes.Added, g)
	}
	return s.save(ctx, student, changes, false)
}

// Delete removes a student together with guardians and enrollments.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "student")
	}
	return nil
}

func (s *StudentService) save(ctx context.Context, student *models.Student, changes repository.GuardianChanges, create bool) (*models.Student, error) {
	guardians, err := s.repo.SaveWithGuardians(ctx, student, changes, create)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoGuardians):
			return nil, appErrors.Wrap(err, appErrors.ErrGuardianRequired.Code, appErrors.ErrGuardianRequired.Status, appErrors.ErrGuardianRequired.Message)
		case errors.Is(err, repository.ErrGuardianNotOwned):
			return nil, validationError(err, "guardian does not belong to this student")
		}
		action := "update"
		if create {
			action = "create"
		}
		return nil, writeError(err, action, "student")
	}
	student.Guardians = guardians
	student.CurrentClass = nil
	s.logger.Debug("student saved", zap.String("student_id", student.ID), zap.Int("guardians", len(guardians)), zap.Bool("created", create))
	return student, nil
}

func guardianFromInput(in GuardianInput) models.Guardian {
	rel := in.Relationship
	if rel == "" {
		rel = models.RelationshipGuardian
	}
	g := models.Guardian{
		Name:         strings.TrimSpace(in.Name),
		Relationship: rel,
		Phone:        normalizeOptional(in.Phone),
		WhatsApp:     normalizeOptional(in.WhatsApp),
		Email:        normalizeOptional(in.Email),
		IsPrimary:    in.IsPrimary,
	}
	if id := normalizeOptional(in.ID); id != nil {
		g.ID = *id
	}
	return g
}

func applyStudentRequest(student *models.Student, req StudentRequest) error {
	dob, err := parseOptionalDate(req.DOB)
	if err != nil {
		return err
	}
	joined, err := parseOptionalDate(req.JoinedDate)
	if err != nil {
		return err
	}
	student.RegNo = strings.TrimSpace(req.RegNo)
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.DOB = dob
	if joined != nil {
		student.JoinedDate = *joined
	}
	student.NIC = normalizeOptional(req.NIC)
	student.School = normalizeOptional(req.School)
	student.Gender = req.Gender
	student.CurrentClassID = normalizeOptional(req.CurrentClassID)
	student.Address = strings.TrimSpace(req.Address)
	student.Phone = normalizeOptional(req.Phone)
	student.WhatsApp = normalizeOptional(req.WhatsApp)
	student.Email = normalizeOptional(req.Email)
	student.IsActive = boolOr(req.IsActive, student.IsActive)
	return nil
}
