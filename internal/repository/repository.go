package repository

import (
	"github.com/mizutanik/tasktree-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDForUpdate finds a task by ID holding a row lock, so a
	// check made against the returned row stays valid until the
	// surrounding transaction commits. Must be called inside Transaction.
	FindByIDForUpdate(id uint64) (*models.Task, error)

	// List returns the full task forest as a flat slice with owner and
	// assignee preloaded.
	List() ([]models.Task, error)

	// Save persists all fields of an existing task
	Save(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error

	// CountChildren counts live direct children of a task
	CountChildren(parentID uint64) (int64, error)

	// HasAncestor reports whether ancestorID appears in the parent chain
	// of the task identified by id.
	HasAncestor(id, ancestorID uint64) (bool, error)

	// Transaction runs fn against a repository bound to a single
	// database transaction.
	Transaction(fn func(TaskRepository) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)
}

// CustomFieldRepository defines the interface for custom field definitions
type CustomFieldRepository interface {
	// Create creates a new field definition
	Create(field *models.CustomField) error

	// FindByID finds a field definition by ID
	FindByID(id uint64) (*models.CustomField, error)

	// FindByName finds a field definition by name
	FindByName(name string) (*models.CustomField, error)

	// List returns all field definitions
	List() ([]models.CustomField, error)

	// Save persists all fields of an existing definition
	Save(field *models.CustomField) error

	// Delete soft deletes a field definition
	Delete(id uint64) error
}
