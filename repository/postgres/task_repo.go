package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

// Every query below carries `owner_id = $n` next to any id match. A row owned
// by someone else is indistinguishable from a missing row.

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	const query = `
	SELECT id, owner_id, title, description, priority, status, due_date, created_at, updated_at
	FROM tasks
	WHERE id = $1 AND owner_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, ownerID)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	SELECT id, owner_id, title, description, priority, status, due_date, created_at, updated_at
	FROM tasks
	WHERE owner_id = $1
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR priority = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.OwnerID,
		string(filter.Status),
		string(filter.Priority),
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, title, description, priority, status, due_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		nullDue(task.DueDate),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{id, ownerID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}

	query := fmt.Sprintf(`
	UPDATE tasks
	SET %s
	WHERE id = $1 AND owner_id = $2
	RETURNING id, owner_id, title, description, priority, status, due_date, created_at, updated_at
	`, strings.Join(set, ", "))

	row := r.pool.QueryRow(ctx, query, args...)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Stats(ctx context.Context, ownerID string) (*repository.TaskStats, error) {
	const query = `
	SELECT status, priority, COUNT(*), COUNT(*) FILTER (WHERE due_date < NOW() AND status <> 'completed')
	FROM tasks
	WHERE owner_id = $1
	GROUP BY status, priority
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &repository.TaskStats{
		ByStatus:   make(map[domain.TaskStatus]int),
		ByPriority: make(map[domain.TaskPriority]int),
	}
	for rows.Next() {
		var (
			status   string
			priority string
			count    int
			overdue  int
		)
		if err := rows.Scan(&status, &priority, &count, &overdue); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByStatus[domain.TaskStatus(status)] += count
		stats.ByPriority[domain.TaskPriority(priority)] += count
		stats.Overdue += overdue
	}
	return stats, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		priority string
		status   string
		due      *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&priority,
		&status,
		&due,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	task.DueDate = due

	return &task, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func nullDue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
