package dto

import (
	"time"

	"github.com/mizutanik/tasktree-api/internal/models"
)

// CustomFieldDTO represents a field definition in API responses.
type CustomFieldDTO struct {
	ID        uint64           `json:"id"`
	Name      string           `json:"name"`
	Type      models.FieldType `json:"type"`
	Options   []string         `json:"options,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ToCustomFieldDTO converts a CustomField model to CustomFieldDTO
func ToCustomFieldDTO(field models.CustomField) CustomFieldDTO {
	return CustomFieldDTO{
		ID:        field.ID,
		Name:      field.Name,
		Type:      field.Type,
		Options:   field.Options,
		CreatedAt: field.CreatedAt,
		UpdatedAt: field.UpdatedAt,
	}
}

// ToCustomFieldDTOs converts a slice of field definitions
func ToCustomFieldDTOs(fields []models.CustomField) []CustomFieldDTO {
	dtos := make([]CustomFieldDTO, len(fields))
	for i, field := range fields {
		dtos[i] = ToCustomFieldDTO(field)
	}
	return dtos
}
