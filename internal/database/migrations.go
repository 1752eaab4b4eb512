package database

import (
	"fmt"

	"github.com/mizutanik/tasktree-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes creates indexes the hot query paths depend on beyond what the
// model tags already declare.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model any
		name  string
	}{
		// Forest reconstruction and child-existence checks on delete.
		{&models.Task{}, "idx_tasks_parent_id"},
		// Owner-or-assignee authorization lookups.
		{&models.Task{}, "idx_tasks_owner_id"},
		{&models.Task{}, "idx_tasks_user_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Migrator().CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
