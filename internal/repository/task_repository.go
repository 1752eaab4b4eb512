package repository

import (
	"fmt"

	"github.com/mizutanik/tasktree-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDForUpdate finds a task by ID holding a row lock
func (r *GormTaskRepository) FindByIDForUpdate(id uint64) (*models.Task, error) {
	query := r.db
	// SQLite has no FOR UPDATE; its write transactions already serialize.
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var task models.Task
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the full task forest as a flat slice
func (r *GormTaskRepository) List() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Preload("Owner").
		Preload("Assignee").
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save persists all fields of an existing task
func (r *GormTaskRepository) Save(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CountChildren counts live direct children of a task
func (r *GormTaskRepository) CountChildren(parentID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// HasAncestor walks the parent chain of the task identified by id and
// reports whether ancestorID appears in it. The visited set guards against
// looping forever on pre-existing bad data.
func (r *GormTaskRepository) HasAncestor(id, ancestorID uint64) (bool, error) {
	visited := map[uint64]struct{}{}
	current := id

	for {
		if _, seen := visited[current]; seen {
			return false, fmt.Errorf("parent chain of task %d contains a cycle", id)
		}
		visited[current] = struct{}{}

		var task models.Task
		if err := r.db.Select("id", "parent_id").First(&task, current).Error; err != nil {
			return false, err
		}
		if task.ParentID == nil {
			return false, nil
		}
		if *task.ParentID == ancestorID {
			return true, nil
		}
		current = *task.ParentID
	}
}

// Transaction runs fn against a repository bound to a single transaction
func (r *GormTaskRepository) Transaction(fn func(TaskRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTaskRepository{db: tx})
	})
}
