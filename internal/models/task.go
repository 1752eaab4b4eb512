package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Task is a unit of work. Tasks form a forest through the self-referential
// ParentID link; a task is a root iff ParentID is nil. OwnerID is fixed to
// the creating user, UserID is the current assignee.
type Task struct {
	ID                   uint64            `gorm:"primarykey" json:"id"`
	Name                 string            `gorm:"type:varchar(255);not null" json:"name"`
	Description          string            `gorm:"type:text" json:"description"`
	StartDate            time.Time         `gorm:"not null" json:"start_date"`
	CompletionPercentage int               `gorm:"not null;default:0" json:"completion_percentage"`
	ParentID             *uint64           `gorm:"index" json:"parent_id"`
	OwnerID              uint64            `gorm:"not null;index" json:"owner_id"`
	UserID               uint64            `gorm:"not null;index" json:"user_id"`
	CustomFields         datatypes.JSONMap `json:"custom_fields"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	DeletedAt            gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Owner    User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Assignee User   `gorm:"foreignKey:UserID" json:"assignee,omitempty"`
	Parent   *Task  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Task `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
