package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mizutanik/tasktree-api/internal/constants"
	"github.com/mizutanik/tasktree-api/internal/dto"
	"github.com/mizutanik/tasktree-api/internal/models"
	"github.com/mizutanik/tasktree-api/internal/repository"
	"github.com/mizutanik/tasktree-api/internal/ws"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("only the owner or assignee can modify this task")
	ErrParentNotFound       = errors.New("parent task not found")
	ErrParentCycle          = errors.New("parent assignment would create a cycle")
	ErrTaskHasChildren      = errors.New("task still has child tasks")
	ErrAssigneeNotFound     = errors.New("assignee not found")
	ErrTaskNameRequired     = errors.New("name is required")
	ErrTaskNameEmpty        = errors.New("name cannot be empty")
	ErrCompletionOutOfRange = errors.New("completion percentage must be between 0 and 100")
)

// EventPublisher fans task mutation events out to realtime subscribers.
// Implementations must not block the request path; delivery is best effort.
type EventPublisher interface {
	Publish(event string, payload any)
}

// TaskService handles the task hierarchy business logic. Every operation
// that mutates a task takes the authenticated actor as an explicit
// parameter, and every successful mutation is mirrored as an event through
// the publisher after the write commits, never before.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	events   EventPublisher
}

// NewTaskService creates a new TaskService. events may be nil, in which
// case mutations are not broadcast.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, events EventPublisher) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		events:   events,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Name                 string
	Description          string
	StartDate            time.Time
	CompletionPercentage int
	ParentID             *uint64
	AssigneeID           *uint64
	CustomFields         map[string]any
}

// UpdateTaskInput represents a partial patch; only non-nil fields change.
type UpdateTaskInput struct {
	Name                 *string
	Description          *string
	StartDate            *time.Time
	CompletionPercentage *int
	ParentID             *uint64
	AssigneeID           *uint64
	CustomFields         map[string]any
}

// CreateTask creates a task. The owner is always the actor; the assignee
// defaults to the actor unless an explicit assignee is supplied.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTaskNameRequired
	}
	if err := validateCompletion(input.CompletionPercentage); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if _, err := s.taskRepo.FindByID(*input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to find parent task: %w", err)
		}
	}

	assigneeID := actor.ID
	if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
		assigneeID = *input.AssigneeID
	}

	task := &models.Task{
		Name:                 input.Name,
		Description:          input.Description,
		StartDate:            input.StartDate.UTC(),
		CompletionPercentage: input.CompletionPercentage,
		ParentID:             input.ParentID,
		OwnerID:              actor.ID,
		UserID:               assigneeID,
		CustomFields:         datatypes.JSONMap(input.CustomFields),
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	task, err := s.taskRepo.FindByID(task.ID, "Owner", "Assignee", "Parent")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ws.EventTaskCreated, dto.ToTaskDTO(*task))
	return task, nil
}

// ListTasks returns the full forest as a flat slice with parentId set on
// each task; clients rebuild the tree from the id to parent mapping.
func (s *TaskService) ListTasks() ([]models.Task, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task with related identities resolved.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Owner", "Assignee", "Parent")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateTask applies a partial patch to a task. The authorization check and
// the write happen inside one transaction against a locked row, so a
// concurrent mutation cannot invalidate the decision between check and
// commit. The owner is fixed at creation and cannot be changed here.
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	err := s.taskRepo.Transaction(func(r repository.TaskRepository) error {
		task, err := r.FindByIDForUpdate(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if task.OwnerID != actor.ID && task.UserID != actor.ID {
			return ErrTaskPermissionDenied
		}

		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return ErrTaskNameEmpty
			}
			task.Name = *input.Name
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.StartDate != nil {
			task.StartDate = input.StartDate.UTC()
		}
		if input.CompletionPercentage != nil {
			if err := validateCompletion(*input.CompletionPercentage); err != nil {
				return err
			}
			task.CompletionPercentage = *input.CompletionPercentage
		}
		if input.ParentID != nil {
			if err := s.checkParentAssignment(r, task, *input.ParentID); err != nil {
				return err
			}
			task.ParentID = input.ParentID
		}
		if input.AssigneeID != nil {
			if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAssigneeNotFound
				}
				return fmt.Errorf("failed to find assignee: %w", err)
			}
			task.UserID = *input.AssigneeID
		}
		if input.CustomFields != nil {
			task.CustomFields = datatypes.JSONMap(input.CustomFields)
		}

		return r.Save(task)
	})
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(taskID, "Owner", "Assignee", "Parent")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish(ws.EventTaskUpdated, dto.ToTaskDTO(*task))
	return task, nil
}

// DeleteTask deletes a task. Deletion is rejected while child tasks exist;
// the subtree must be removed leaf-first. A repeated delete fails with
// ErrTaskNotFound.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	err := s.taskRepo.Transaction(func(r repository.TaskRepository) error {
		task, err := r.FindByIDForUpdate(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if task.OwnerID != actor.ID && task.UserID != actor.ID {
			return ErrTaskPermissionDenied
		}

		children, err := r.CountChildren(taskID)
		if err != nil {
			return fmt.Errorf("failed to count children: %w", err)
		}
		if children > 0 {
			return ErrTaskHasChildren
		}

		return r.Delete(taskID)
	})
	if err != nil {
		return err
	}

	s.publish(ws.EventTaskDeleted, dto.TaskDeletedDTO{ID: taskID})
	return nil
}

// checkParentAssignment validates a new parent for task: it must exist, must
// not be the task itself, and must not sit below the task in the tree.
func (s *TaskService) checkParentAssignment(r repository.TaskRepository, task *models.Task, parentID uint64) error {
	if parentID == task.ID {
		return ErrParentCycle
	}

	if _, err := r.FindByID(parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("failed to find parent task: %w", err)
	}

	cycle, err := r.HasAncestor(parentID, task.ID)
	if err != nil {
		return fmt.Errorf("failed to walk parent chain: %w", err)
	}
	if cycle {
		return ErrParentCycle
	}

	return nil
}

func (s *TaskService) publish(event string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(event, payload)
}

func validateCompletion(value int) error {
	if value < constants.MinCompletionPercentage || value > constants.MaxCompletionPercentage {
		return ErrCompletionOutOfRange
	}
	return nil
}
