package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/service"
	"github.com/noah-isme/tuition-center-api/pkg/response"
)

type staffService interface {
	ListStaff(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	CreateStaff(ctx context.Context, req service.CreateStaffRequest, meta models.AuditMeta) (*models.User, error)
	ChangeStaffPassword(ctx context.Context, id string, req service.SetPasswordRequest, meta models.AuditMeta) error
	DeleteStaff(ctx context.Context, id string, meta models.AuditMeta) error
}

// UserHandler exposes staff account management to administrators.
type UserHandler struct {
	service staffService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc staffService) *UserHandler {
	return &UserHandler{service: svc}
}

// ListStaff godoc
// @Summary List staff accounts
// @Tags Users
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users/staff [get]
func (h *UserHandler) ListStaff(c *gin.Context) {
	q := parseListQuery(c)
	filter := models.UserFilter{
		Active:    boolQuery(c, "active"),
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	users, pagination, err := h.service.ListStaff(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// CreateStaff godoc
// @Summary Create a staff account
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /users/staff [post]
func (h *UserHandler) CreateStaff(c *gin.Context) {
	var req service.CreateStaffRequest
	if !bindJSON(c, &req, "invalid staff payload") {
		return
	}
	user, err := h.service.CreateStaff(c.Request.Context(), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// ChangePassword godoc
// @Summary Set a staff member's password
// @Tags Users
// @Accept json
// @Param id path string true "User ID"
// @Param payload body service.SetPasswordRequest true "Password payload"
// @Success 204
// @Router /users/staff/{id}/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req service.SetPasswordRequest
	if !bindJSON(c, &req, "invalid password payload") {
		return
	}
	if err := h.service.ChangeStaffPassword(c.Request.Context(), c.Param("id"), req, auditMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteStaff godoc
// @Summary Delete a staff account
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Router /users/staff/{id} [delete]
func (h *UserHandler) DeleteStaff(c *gin.Context) {
	if err := h.service.DeleteStaff(c.Request.Context(), c.Param("id"), auditMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
