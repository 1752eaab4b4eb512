package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FieldType string

const (
	FieldTypeText     FieldType = "TEXT"
	FieldTypeNumber   FieldType = "NUMBER"
	FieldTypeDate     FieldType = "DATE"
	FieldTypeDropdown FieldType = "DROPDOWN"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeDropdown:
		return true
	}
	return false
}

// CustomField is a typed field definition attachable to tasks. Values live
// on each task as an opaque key-value bag, so deleting a definition never
// touches already-stored values.
type CustomField struct {
	ID        uint64                      `gorm:"primarykey" json:"id"`
	Name      string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Type      FieldType                   `gorm:"type:varchar(20);not null" json:"type"`
	Options   datatypes.JSONSlice[string] `json:"options,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
	DeletedAt gorm.DeletedAt              `gorm:"index" json:"-"`
}
