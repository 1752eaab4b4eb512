package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mizutanik/tasktree-api/internal/models"
	"github.com/mizutanik/tasktree-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrFieldNotFound           = errors.New("custom field not found")
	ErrFieldNameTaken          = errors.New("a custom field with this name already exists")
	ErrFieldNameRequired       = errors.New("field name is required")
	ErrInvalidFieldType        = errors.New("field type must be TEXT, NUMBER, DATE, or DROPDOWN")
	ErrDropdownOptionsRequired = errors.New("dropdown fields require at least one option")
)

// CustomFieldService handles field definition business logic. Definitions
// are independent of tasks: deleting one never strips values already stored
// on tasks.
type CustomFieldService struct {
	fieldRepo repository.CustomFieldRepository
}

// NewCustomFieldService creates a new CustomFieldService.
func NewCustomFieldService(fieldRepo repository.CustomFieldRepository) *CustomFieldService {
	return &CustomFieldService{fieldRepo: fieldRepo}
}

// CreateFieldInput represents input for creating a field definition.
type CreateFieldInput struct {
	Name    string
	Type    models.FieldType
	Options []string
}

// UpdateFieldInput represents a partial patch; only non-nil fields change.
type UpdateFieldInput struct {
	Name    *string
	Type    *models.FieldType
	Options *[]string
}

// CreateField creates a field definition. Options are required for DROPDOWN
// fields and dropped for every other type.
func (s *CustomFieldService) CreateField(input CreateFieldInput) (*models.CustomField, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrFieldNameRequired
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidFieldType
	}

	options := input.Options
	if input.Type == models.FieldTypeDropdown {
		if len(options) == 0 {
			return nil, ErrDropdownOptionsRequired
		}
	} else {
		options = nil
	}

	if _, err := s.fieldRepo.FindByName(name); err == nil {
		return nil, ErrFieldNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check field name: %w", err)
	}

	field := &models.CustomField{
		Name:    name,
		Type:    input.Type,
		Options: options,
	}

	if err := s.fieldRepo.Create(field); err != nil {
		return nil, fmt.Errorf("failed to create custom field: %w", err)
	}

	return field, nil
}

// ListFields returns all field definitions.
func (s *CustomFieldService) ListFields() ([]models.CustomField, error) {
	fields, err := s.fieldRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	return fields, nil
}

// GetField returns a field definition by ID.
func (s *CustomFieldService) GetField(id uint64) (*models.CustomField, error) {
	field, err := s.fieldRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, fmt.Errorf("failed to find custom field: %w", err)
	}
	return field, nil
}

// UpdateField applies a partial patch. The definition must still be valid
// afterwards: a field that ends up DROPDOWN needs non-empty options, any
// other type loses its options.
func (s *CustomFieldService) UpdateField(id uint64, input UpdateFieldInput) (*models.CustomField, error) {
	field, err := s.GetField(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrFieldNameRequired
		}
		if name != field.Name {
			if existing, err := s.fieldRepo.FindByName(name); err == nil && existing.ID != field.ID {
				return nil, ErrFieldNameTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check field name: %w", err)
			}
		}
		field.Name = name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, ErrInvalidFieldType
		}
		field.Type = *input.Type
	}
	if input.Options != nil {
		field.Options = *input.Options
	}

	if field.Type == models.FieldTypeDropdown {
		if len(field.Options) == 0 {
			return nil, ErrDropdownOptionsRequired
		}
	} else {
		field.Options = nil
	}

	if err := s.fieldRepo.Save(field); err != nil {
		return nil, fmt.Errorf("failed to update custom field: %w", err)
	}

	return field, nil
}

// DeleteField deletes a field definition.
func (s *CustomFieldService) DeleteField(id uint64) error {
	if _, err := s.GetField(id); err != nil {
		return err
	}
	if err := s.fieldRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete custom field: %w", err)
	}
	return nil
}
