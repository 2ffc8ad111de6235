package repository

import (
	"context"

	"github.com/taskhive/backend/domain"
)

// TaskFilter narrows an owner-scoped listing. OwnerID is mandatory and is
// combined with, never replaced by, the optional enum filters.
type TaskFilter struct {
	OwnerID  string
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Limit    int
	Offset   int
}

// TaskStats summarizes an owner's tasks for dashboard views.
type TaskStats struct {
	Total      int                            `json:"total"`
	ByStatus   map[domain.TaskStatus]int      `json:"by_status"`
	ByPriority map[domain.TaskPriority]int    `json:"by_priority"`
	Overdue    int                            `json:"overdue"`
}

// TaskRepository is the ownership-scoped task store. Every operation takes the
// owner explicitly so an unscoped query cannot be constructed: a lookup or
// mutation for a task another owner holds behaves exactly like absence.
type TaskRepository interface {
	GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	Stats(ctx context.Context, ownerID string) (*TaskStats, error)
}
