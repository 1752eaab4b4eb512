package dto

import (
	"time"

	"github.com/mizutanik/tasktree-api/internal/models"
)

// TaskParentDTO is the parent summary embedded in task responses.
type TaskParentDTO struct {
	ID                   uint64    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	StartDate            time.Time `json:"startDate"`
	CompletionPercentage int       `json:"completionPercentage"`
	ParentID             *uint64   `json:"parentId"`
}

// TaskDTO represents a task in API responses. The list endpoint returns a
// flat slice of these; clients rebuild the tree from ParentID.
type TaskDTO struct {
	ID                   uint64         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	StartDate            time.Time      `json:"startDate"`
	CompletionPercentage int            `json:"completionPercentage"`
	ParentID             *uint64        `json:"parentId"`
	OwnerID              uint64         `json:"ownerId"`
	UserID               uint64         `json:"userId"`
	CustomFields         map[string]any `json:"customFields,omitempty"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	Owner                *UserDTO       `json:"owner,omitempty"`
	Assignee             *UserDTO       `json:"user,omitempty"`
	Parent               *TaskParentDTO `json:"parent,omitempty"`
}

// TaskDeletedDTO is the payload of a taskDeleted event.
type TaskDeletedDTO struct {
	ID uint64 `json:"id"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                   task.ID,
		Name:                 task.Name,
		Description:          task.Description,
		StartDate:            task.StartDate,
		CompletionPercentage: task.CompletionPercentage,
		ParentID:             task.ParentID,
		OwnerID:              task.OwnerID,
		UserID:               task.UserID,
		CustomFields:         task.CustomFields,
		CreatedAt:            task.CreatedAt,
		UpdatedAt:            task.UpdatedAt,
	}

	// Include relations only when preloaded
	if task.Owner.ID != 0 {
		owner := ToUserDTO(task.Owner)
		dto.Owner = &owner
	}
	if task.Assignee.ID != 0 {
		assignee := ToUserDTO(task.Assignee)
		dto.Assignee = &assignee
	}
	if task.Parent != nil {
		dto.Parent = &TaskParentDTO{
			ID:                   task.Parent.ID,
			Name:                 task.Parent.Name,
			Description:          task.Parent.Description,
			StartDate:            task.Parent.StartDate,
			CompletionPercentage: task.Parent.CompletionPercentage,
			ParentID:             task.Parent.ParentID,
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
