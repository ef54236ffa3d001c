package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
	"github.com/noah-isme/tuition-center-api/pkg/response"
)

type deletionService interface {
	DeleteTeacher(ctx context.Context, id string, req models.TeacherReassignment, meta models.AuditMeta) (*models.DeletionOutcome, error)
	DeleteClass(ctx context.Context, id, reassignTo string, meta models.AuditMeta) (*models.DeletionOutcome, error)
	DeleteSubject(ctx context.Context, id, reassignTo string, meta models.AuditMeta) (*models.DeletionOutcome, error)
}

// DeletionHandler serves deletes of referenced entities. A blocked delete answers 409 with the
// dependents and the records that could take them over.
type DeletionHandler struct {
	service deletionService
}

// NewDeletionHandler constructs a DeletionHandler.
func NewDeletionHandler(svc deletionService) *DeletionHandler {
	return &DeletionHandler{service: svc}
}

// DeleteTeacher godoc
// @Summary Delete teacher, optionally reassigning classes and assignments
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param reassign_classes_to query string false "Teacher receiving the classes"
// @Param reassign_assignments_to query string false "Teacher receiving the subject assignments"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *DeletionHandler) DeleteTeacher(c *gin.Context) {
	req := models.TeacherReassignment{
		ClassesTo:     strings.TrimSpace(c.Query("reassign_classes_to")),
		AssignmentsTo: strings.TrimSpace(c.Query("reassign_assignments_to")),
	}
	outcome, err := h.service.DeleteTeacher(c.Request.Context(), c.Param("id"), req, auditMeta(c))
	writeOutcome(c, outcome, err)
}

// DeleteClass godoc
// @Summary Delete class, optionally moving its students
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Param reassign_to query string false "Class receiving the students"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *DeletionHandler) DeleteClass(c *gin.Context) {
	outcome, err := h.service.DeleteClass(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("reassign_to")), auditMeta(c))
	writeOutcome(c, outcome, err)
}

// DeleteSubject godoc
// @Summary Delete subject, optionally moving its assignments
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Param reassign_to query string false "Subject receiving the assignments"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects/{id} [delete]
func (h *DeletionHandler) DeleteSubject(c *gin.Context) {
	outcome, err := h.service.DeleteSubject(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("reassign_to")), auditMeta(c))
	writeOutcome(c, outcome, err)
}

func writeOutcome(c *gin.Context, outcome *models.DeletionOutcome, err error) {
	switch {
	case err != nil && outcome != nil:
		response.ErrorWithData(c, err, outcome)
	case err != nil:
		response.Error(c, err)
	case outcome.State == models.DeletionBlocked:
		message := outcome.Message
		if message == "" {
			message = appErrors.ErrDeleteBlocked.Message
		}
		response.ErrorWithData(c, appErrors.Clone(appErrors.ErrDeleteBlocked, message), outcome)
	default:
		response.JSON(c, http.StatusOK, outcome, nil)
	}
}
