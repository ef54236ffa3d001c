package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/repository"
	"github.com/noah-isme/tuition-center-api/pkg/database"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

// DeletableRepository is implemented by repositories of entities protected by restrict-on-delete
// references.
type DeletableRepository interface {
	Delete(ctx context.Context, id string) error
	Dependents(ctx context.Context, id string) ([]models.Dependent, error)
	Alternatives(ctx context.Context, id string) ([]models.DeletionCandidate, error)
	ReassignAndDelete(ctx context.Context, id string, targets models.ReassignmentTargets) (map[string]int, error)
}

type deletionTarget struct {
	entity string
	label  string
	repo   DeletableRepository
}

// DeletionService drives the delete workflow of teachers, classes and subjects. A request without
// reassignment targets attempts a direct delete and ends deleted or blocked. A request with
// targets validates them, moves dependents and deletes in one transaction, or ends blocked with
// nothing changed.
type DeletionService struct {
	teachers deletionTarget
	classes  deletionTarget
	subjects deletionTarget
	audit    auditWriter
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewDeletionService constructs a DeletionService.
func NewDeletionService(teachers, classes, subjects DeletableRepository, audit auditWriter, metrics *MetricsService, logger *zap.Logger) *DeletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeletionService{
		teachers: deletionTarget{entity: models.EntityTeacher, label: "teacher", repo: teachers},
		classes:  deletionTarget{entity: models.EntityTuitionClass, label: "class", repo: classes},
		subjects: deletionTarget{entity: models.EntitySubject, label: "subject", repo: subjects},
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
	}
}

// DeleteTeacher deletes a teacher. Classes and assignments have independent targets; a relation
// left without a target keeps blocking the delete while it has dependents.
func (s *DeletionService) DeleteTeacher(ctx context.Context, id string, req models.TeacherReassignment, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	return s.run(ctx, s.teachers, id, req.Targets(), meta)
}

// DeleteClass deletes a class, moving its current students to reassignTo when given.
func (s *DeletionService) DeleteClass(ctx context.Context, id, reassignTo string, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	return s.run(ctx, s.classes, id, singleTarget(models.RelationStudents, reassignTo), meta)
}

// DeleteSubject deletes a subject, moving its assignments to reassignTo when given.
func (s *DeletionService) DeleteSubject(ctx context.Context, id, reassignTo string, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	return s.run(ctx, s.subjects, id, singleTarget(models.RelationAssignments, reassignTo), meta)
}

func singleTarget(relation, target string) models.ReassignmentTargets {
	targets := models.ReassignmentTargets{}
	if target = strings.TrimSpace(target); target != "" {
		targets[relation] = target
	}
	return targets
}

func (s *DeletionService) run(ctx context.Context, t deletionTarget, id string, targets models.ReassignmentTargets, meta models.AuditMeta) (*models.DeletionOutcome, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, t.label+" not found")
	}
	outcome := &models.DeletionOutcome{Entity: t.entity, EntityID: id, State: models.DeletionRequested}

	if targets.Empty() {
		err := t.repo.Delete(ctx, id)
		switch {
		case err == nil:
			return s.deleted(ctx, t, outcome, nil, targets, meta), nil
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, t.label+" not found")
		case database.IsForeignKeyViolation(err):
			return s.block(ctx, t, outcome, fmt.Sprintf("This %s is still referenced. Choose a replacement to reassign its dependents before deleting.", t.label))
		default:
			return nil, internalError(err, "failed to delete "+t.label)
		}
	}

	for relation, target := range targets {
		if target == "" {
			continue
		}
		if _, err := uuid.Parse(target); err != nil || target == id {
			msg := fmt.Sprintf("Selected %s for %s is not a valid replacement.", t.label, relation)
			return s.blockWithError(ctx, t, outcome, msg, appErrors.Clone(appErrors.ErrReassignTarget, msg))
		}
	}

	outcome.State = models.DeletionReassigning
	moved, err := t.repo.ReassignAndDelete(ctx, id, targets)
	var targetErr *repository.TargetError
	switch {
	case err == nil:
		return s.deleted(ctx, t, outcome, moved, targets, meta), nil
	case errors.As(err, &targetErr):
		msg := fmt.Sprintf("Selected %s for %s does not exist.", t.label, targetErr.Relation)
		return s.blockWithError(ctx, t, outcome, msg, appErrors.Wrap(err, appErrors.ErrReassignTarget.Code, appErrors.ErrReassignTarget.Status, msg))
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, t.label+" not found")
	case database.IsForeignKeyViolation(err):
		return s.block(ctx, t, outcome, fmt.Sprintf("Some dependents still reference this %s. Choose a replacement for every relation.", t.label))
	case database.IsUniqueViolation(err):
		msg, ok := constraintMessages[database.ConstraintName(err)]
		if !ok {
			msg = "The replacement already holds a conflicting record."
		}
		return s.blockWithError(ctx, t, outcome, msg, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msg))
	default:
		return nil, internalError(err, "failed to reassign and delete "+t.label)
	}
}

// block moves the outcome to blocked and attaches the dependents and eligible replacements.
func (s *DeletionService) block(ctx context.Context, t deletionTarget, outcome *models.DeletionOutcome, message string) (*models.DeletionOutcome, error) {
	deps, err := t.repo.Dependents(ctx, outcome.EntityID)
	if err != nil {
		return nil, internalError(err, "failed to list dependents")
	}
	alts, err := t.repo.Alternatives(ctx, outcome.EntityID)
	if err != nil {
		return nil, internalError(err, "failed to list replacements")
	}
	outcome.State = models.DeletionBlocked
	outcome.Dependents = deps
	outcome.Alternatives = alts
	outcome.Message = message
	s.metrics.ObserveDeletion(t.entity, outcome.State)
	s.logger.Info("delete blocked",
		zap.String("entity", t.entity),
		zap.String("id", outcome.EntityID),
		zap.Int("dependents", len(deps)),
	)
	return outcome, nil
}

func (s *DeletionService) blockWithError(ctx context.Context, t deletionTarget, outcome *models.DeletionOutcome, message string, cause *appErrors.Error) (*models.DeletionOutcome, error) {
	out, err := s.block(ctx, t, outcome, message)
	if err != nil {
		return nil, err
	}
	return out, cause
}

func (s *DeletionService) deleted(ctx context.Context, t deletionTarget, outcome *models.DeletionOutcome, moved map[string]int, targets models.ReassignmentTargets, meta models.AuditMeta) *models.DeletionOutcome {
	outcome.State = models.DeletionDeleted
	outcome.Moved = moved
	s.metrics.ObserveDeletion(t.entity, outcome.State)

	if targets.Empty() {
		recordAudit(ctx, s.audit, s.logger, models.AuditActionDelete, t.entity, outcome.EntityID, meta, nil)
		return outcome
	}
	for relation, n := range moved {
		s.metrics.AddReassigned(relation, n)
	}
	recordAudit(ctx, s.audit, s.logger, models.AuditActionReassignDelete, t.entity, outcome.EntityID, meta, map[string]interface{}{
		"targets": targets,
		"moved":   moved,
	})
	s.logger.Info("reassigned and deleted", zap.String("entity", t.entity), zap.String("id", outcome.EntityID), zap.Any("moved", moved))
	return outcome
}
