package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/service"
	"github.com/noah-isme/tuition-center-api/pkg/response"
)

type subjectAssignmentService interface {
	List(ctx context.Context, filter models.SubjectAssignmentFilter) ([]models.SubjectAssignment, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.SubjectAssignment, error)
	Create(ctx context.Context, req service.SubjectAssignmentRequest) (*models.SubjectAssignment, error)
	Update(ctx context.Context, id string, req service.SubjectAssignmentRequest) (*models.SubjectAssignment, error)
	Delete(ctx context.Context, id string) error
}

// SubjectAssignmentHandler serves teacher-to-subject assignment endpoints.
type SubjectAssignmentHandler struct {
	assignments subjectAssignmentService
}

// NewSubjectAssignmentHandler constructs a SubjectAssignmentHandler.
func NewSubjectAssignmentHandler(assignments subjectAssignmentService) *SubjectAssignmentHandler {
	return &SubjectAssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List subject assignments
// @Tags Subject Assignments
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Param teacher_id query string false "Filter by teacher"
// @Success 200 {object} response.Envelope
// @Router /subject-assignments [get]
func (h *SubjectAssignmentHandler) List(c *gin.Context) {
	q := parseListQuery(c)
	filter := models.SubjectAssignmentFilter{
		Search:    q.Search,
		SubjectID: strings.TrimSpace(c.Query("subject_id")),
		TeacherID: strings.TrimSpace(c.Query("teacher_id")),
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	items, pagination, err := h.assignments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get subject assignment
// @Tags Subject Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /subject-assignments/{id} [get]
func (h *SubjectAssignmentHandler) Get(c *gin.Context) {
	item, err := h.assignments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Assign a teacher to a subject
// @Tags Subject Assignments
// @Accept json
// @Produce json
// @Param payload body service.SubjectAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /subject-assignments [post]
func (h *SubjectAssignmentHandler) Create(c *gin.Context) {
	var req service.SubjectAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	item, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update subject assignment
// @Tags Subject Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.SubjectAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /subject-assignments/{id} [put]
func (h *SubjectAssignmentHandler) Update(c *gin.Context) {
	var req service.SubjectAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	item, err := h.assignments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete subject assignment
// @Tags Subject Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /subject-assignments/{id} [delete]
func (h *SubjectAssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
