package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/pkg/response"
)

type codeHinter interface {
	Next(ctx context.Context, entity string) (*models.CodeHint, error)
}

// CodeHintHandler suggests the next code for coded entities.
type CodeHintHandler struct {
	hints codeHinter
}

// NewCodeHintHandler constructs a CodeHintHandler.
func NewCodeHintHandler(hints codeHinter) *CodeHintHandler {
	return &CodeHintHandler{hints: hints}
}

// Next returns a handler answering with the latest and suggested code of entity.
//
// @Summary Suggest the next code
// @Tags Codes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/next-code [get]
// @Router /subjects/next-code [get]
// @Router /subject-assignments/next-code [get]
// @Router /students/next-code [get]
func (h *CodeHintHandler) Next(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		hint, err := h.hints.Next(c.Request.Context(), entity)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, hint, nil)
	}
}
