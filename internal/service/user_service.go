package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateStaffRequest creates a staff (card marker) account.
type CreateStaffRequest struct {
	Email           string `json:"email" validate:"required,email"`
	FullName        string `json:"full_name" validate:"required,max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *CreateStaffRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
}

// SetPasswordRequest replaces a staff member's password.
type SetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UserService handles account management: staff accounts through the API and superusers through
// the admin command.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// ListStaff returns staff accounts ordered by email.
func (s *UserService) ListStaff(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	role := models.RoleStaff
	filter.Role = &role
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list staff")
	}
	return users, newPagination(filter.Page, filter.PageSize, total), nil
}

// CreateStaff adds a staff account. The role is always staff and never superuser.
func (s *UserService) CreateStaff(ctx context.Context, req CreateStaffRequest, meta models.AuditMeta) (*models.User, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid staff payload")
	}
	user, err := s.create(ctx, req.Email, req.FullName, req.Password, models.RoleStaff, false)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.repo, s.logger, models.AuditActionUserCreate, "users", user.ID, meta, map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})
	return user, nil
}

// ChangeStaffPassword sets a new password for a staff account and ends its sessions.
func (s *UserService) ChangeStaffPassword(ctx context.Context, id string, req SetPasswordRequest, meta models.AuditMeta) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid password payload")
	}
	user, err := s.findStaff(ctx, id)
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return err
	}
	recordAudit(ctx, s.repo, s.logger, models.AuditActionPasswordChange, "users", user.ID, meta, map[string]string{"changed_by": meta.ActorID})
	return nil
}

// DeleteStaff removes a staff account. An administrator cannot remove their own account.
func (s *UserService) DeleteStaff(ctx context.Context, id string, meta models.AuditMeta) error {
	if id == meta.ActorID {
		return appErrors.Clone(appErrors.ErrSelfDeleteBlocked, "")
	}
	user, err := s.findStaff(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return writeError(err, "delete", "staff account")
	}
	recordAudit(ctx, s.repo, s.logger, models.AuditActionUserDelete, "users", user.ID, meta, map[string]string{"email": user.Email})
	return nil
}

// CreateSuperuser creates an administrator with the superuser flag.
func (s *UserService) CreateSuperuser(ctx context.Context, email, fullName, password string) (*models.User, error) {
	req := CreateStaffRequest{Email: email, FullName: fullName, Password: password, PasswordConfirm: password}
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid superuser details")
	}
	user, err := s.create(ctx, req.Email, req.FullName, password, models.RoleAdmin, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("superuser created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// ResetPassword sets the password of any account by email.
func (s *UserService) ResetPassword(ctx context.Context, email, password string) error {
	if err := s.validator.Var(password, "required,min=8"); err != nil {
		return validationError(err, "password must be at least 8 characters")
	}
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return loadError(err, "user")
	}
	if err := s.setPassword(ctx, user, password); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *UserService) create(ctx context.Context, email, fullName, password string, role models.UserRole, superuser bool) (*models.User, error) {
	email = normalizeEmail(email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to check email uniqueness")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		IsSuperuser:  superuser,
		Active:       true,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, writeError(err, "create", "user")
	}
	return user, nil
}

func (s *UserService) findStaff(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "staff account")
	}
	if !user.IsStaff() || user.IsSuperuser {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "staff account not found")
	}
	return user, nil
}

func (s *UserService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, time.Now().UTC()); err != nil {
		return writeError(err, "update", "password")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens after password reset", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
