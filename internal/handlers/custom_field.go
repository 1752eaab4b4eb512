package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mizutanik/tasktree-api/internal/dto"
	apierrors "github.com/mizutanik/tasktree-api/internal/errors"
	"github.com/mizutanik/tasktree-api/internal/models"
	"github.com/mizutanik/tasktree-api/internal/services"
)

// CustomFieldHandler coordinates custom field HTTP handlers.
type CustomFieldHandler struct {
	fieldService *services.CustomFieldService
}

// NewCustomFieldHandler creates a new CustomFieldHandler.
func NewCustomFieldHandler(fieldService *services.CustomFieldService) *CustomFieldHandler {
	return &CustomFieldHandler{
		fieldService: fieldService,
	}
}

// CreateField creates a new field definition.
func (h *CustomFieldHandler) CreateField(c *gin.Context) {
	type CreateFieldRequest struct {
		Name    string           `json:"name" binding:"required"`
		Type    models.FieldType `json:"type" binding:"required"`
		Options []string         `json:"options"`
	}

	var req CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	field, err := h.fieldService.CreateField(services.CreateFieldInput{
		Name:    req.Name,
		Type:    req.Type,
		Options: req.Options,
	})
	if err != nil {
		respondFieldError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCustomFieldDTO(*field))
}

// ListFields returns all field definitions.
func (h *CustomFieldHandler) ListFields(c *gin.Context) {
	fields, err := h.fieldService.ListFields()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomFieldDTOs(fields))
}

// GetField returns a single field definition.
func (h *CustomFieldHandler) GetField(c *gin.Context) {
	fieldID, ok := fieldIDParam(c)
	if !ok {
		return
	}

	field, err := h.fieldService.GetField(fieldID)
	if err != nil {
		respondFieldError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomFieldDTO(*field))
}

// UpdateField applies a partial patch to a field definition.
func (h *CustomFieldHandler) UpdateField(c *gin.Context) {
	fieldID, ok := fieldIDParam(c)
	if !ok {
		return
	}

	type UpdateFieldRequest struct {
		Name    *string           `json:"name"`
		Type    *models.FieldType `json:"type"`
		Options *[]string         `json:"options"`
	}

	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	field, err := h.fieldService.UpdateField(fieldID, services.UpdateFieldInput{
		Name:    req.Name,
		Type:    req.Type,
		Options: req.Options,
	})
	if err != nil {
		respondFieldError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomFieldDTO(*field))
}

// DeleteField deletes a field definition. Values already stored on tasks
// stay untouched.
func (h *CustomFieldHandler) DeleteField(c *gin.Context) {
	fieldID, ok := fieldIDParam(c)
	if !ok {
		return
	}

	if err := h.fieldService.DeleteField(fieldID); err != nil {
		respondFieldError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Custom field deleted",
	})
}

func fieldIDParam(c *gin.Context) (uint64, bool) {
	fieldID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid custom field ID")
		return 0, false
	}
	return fieldID, true
}

func respondFieldError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFieldNameRequired),
		errors.Is(err, services.ErrInvalidFieldType),
		errors.Is(err, services.ErrDropdownOptionsRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrFieldNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrFieldNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
