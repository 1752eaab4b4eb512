package repository

import (
	"github.com/mizutanik/tasktree-api/internal/models"
	"gorm.io/gorm"
)

// GormCustomFieldRepository is a GORM implementation of CustomFieldRepository
type GormCustomFieldRepository struct {
	db *gorm.DB
}

// NewCustomFieldRepository creates a new CustomFieldRepository
func NewCustomFieldRepository(db *gorm.DB) CustomFieldRepository {
	return &GormCustomFieldRepository{db: db}
}

// Create creates a new field definition
func (r *GormCustomFieldRepository) Create(field *models.CustomField) error {
	return r.db.Create(field).Error
}

// FindByID finds a field definition by ID
func (r *GormCustomFieldRepository) FindByID(id uint64) (*models.CustomField, error) {
	var field models.CustomField
	if err := r.db.First(&field, id).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

// FindByName finds a field definition by name
func (r *GormCustomFieldRepository) FindByName(name string) (*models.CustomField, error) {
	var field models.CustomField
	if err := r.db.Where("name = ?", name).First(&field).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

// List returns all field definitions ordered by creation
func (r *GormCustomFieldRepository) List() ([]models.CustomField, error) {
	var fields []models.CustomField
	if err := r.db.Order("id ASC").Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

// Save persists all fields of an existing definition
func (r *GormCustomFieldRepository) Save(field *models.CustomField) error {
	return r.db.Save(field).Error
}

// Delete soft deletes a field definition
func (r *GormCustomFieldRepository) Delete(id uint64) error {
	return r.db.Delete(&models.CustomField{}, id).Error
}
