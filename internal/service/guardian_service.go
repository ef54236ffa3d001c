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

type guardianRepository interface {
	List(ctx context.Context, filter models.GuardianFilter) ([]models.Guardian, int, error)
	FindByID(ctx context.Context, id string) (*models.Guardian, error)
	Create(ctx context.Context, g *models.Guardian) error
	Update(ctx context.Context, g *models.Guardian) error
	Delete(ctx context.Context, studentID, id string) error
}

// GuardianRequest is the payload for guardian writes outside the student form.
type GuardianRequest struct {
	StudentID    string              `json:"student_id" validate:"required,uuid"`
	Name         string              `json:"name" validate:"required,max=150"`
	Relationship models.Relationship `json:"relationship" validate:"omitempty,oneof=mother father guardian other"`
	Phone        *string             `json:"phone" validate:"omitempty,max=30"`
	WhatsApp     *string             `json:"whatsapp" validate:"omitempty,max=30"`
	Email        *string             `json:"email" validate:"omitempty,email"`
	IsPrimary    bool                `json:"is_primary"`
}

func (r *GuardianRequest) normalize() {
	r.Email = normalizeOptional(r.Email)
}

// GuardianService exposes guardian CRUD. Every write keeps exactly one primary guardian per
// student and refuses to remove a student's last guardian.
type GuardianService struct {
	repo      guardianRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGuardianService constructs a GuardianService.
func NewGuardianService(repo guardianRepository, validate *validator.Validate, logger *zap.Logger) *GuardianService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardianService{repo: repo, validator: validate, logger: logger}
}

// List returns guardians.
func (s *GuardianService) List(ctx context.Context, filter models.GuardianFilter) ([]models.Guardian, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list guardians")
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one guardian.
func (s *GuardianService) Get(ctx context.Context, id string) (*models.Guardian, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "guardian")
	}
	return g, nil
}

// Create adds a guardian to a student.
func (s *GuardianService) Create(ctx context.Context, req GuardianRequest) (*models.Guardian, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid guardian payload")
	}
	g := &models.Guardian{StudentID: req.StudentID}
	applyGuardianRequest(g, req)
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, guardianWriteError(err, "create")
	}
	return g, nil
}

// Update modifies a guardian. Moving a guardian to another student is not supported.
func (s *GuardianService) Update(ctx context.Context, id string, req GuardianRequest) (*models.Guardian, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid guardian payload")
	}
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "guardian")
	}
	if req.StudentID != g.StudentID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "guardian cannot be moved to another student")
	}
	applyGuardianRequest(g, req)
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, guardianWriteError(err, "update")
	}
	return g, nil
}

// Delete removes a guardian unless it is the student's last one.
func (s *GuardianService) Delete(ctx context.Context, id string) error {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return loadError(err, "guardian")
	}
	if err := s.repo.Delete(ctx, g.StudentID, id); err != nil {
		return guardianWriteError(err, "delete")
	}
	return nil
}

func guardianWriteError(err error, action string) *appErrors.Error {
	switch {
	case errors.Is(err, repository.ErrNoGuardians):
		return appErrors.Wrap(err, appErrors.ErrGuardianRequired.Code, appErrors.ErrGuardianRequired.Status, "a student must keep at least one guardian")
	case errors.Is(err, repository.ErrGuardianNotOwned):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "guardian not found")
	}
	return writeError(err, action, "guardian")
}

func applyGuardianRequest(g *models.Guardian, req GuardianRequest) {
	g.Name = strings.TrimSpace(req.Name)
	g.Relationship = req.Relationship
	if g.Relationship == "" {
		g.Relationship = models.RelationshipGuardian
	}
	g.Phone = normalizeOptional(req.Phone)
	g.WhatsApp = normalizeOptional(req.WhatsApp)
	g.Email = normalizeOptional(req.Email)
	g.IsPrimary = req.IsPrimary
}
