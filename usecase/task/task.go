package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/logger"
	"github.com/taskhive/backend/repository"
	"github.com/taskhive/backend/usecase"
)

// CreateInput carries raw task fields before validation and defaulting.
type CreateInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
	DueDate     *string
}

// UseCase guards the ownership boundary: every operation takes the verified
// owner id and hands it straight to the owner-scoped repository.
type UseCase struct {
	tasks  repository.TaskRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		return nil, domain.NewValidationError("status must be one of: todo, in-progress, completed")
	}
	if filter.Priority != "" && !domain.ValidPriority(filter.Priority) {
		return nil, domain.NewValidationError("priority must be one of: low, medium, high")
	}
	if filter.Offset < 0 {
		return nil, domain.NewValidationError("offset must not be negative")
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, ownerID, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, ownerID string, input CreateInput) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, input.Title, input.Description, input.Priority, input.Status, input.DueDate)
	if err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, err, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return uc.tasks.GetByID(ctx, ownerID, id)
	}

	updated, err := uc.tasks.Update(ctx, ownerID, id, patch)
	if err != nil {
		snapshot := &domain.Task{ID: id, OwnerID: ownerID}
		patch.Apply(snapshot)
		if uc.shouldBuffer(ctx, err, usecase.OperationUpdate, snapshot) {
			return snapshot, nil
		}
		return nil, err
	}
	return updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	if err := uc.tasks.Delete(ctx, ownerID, id); err != nil {
		if uc.shouldBuffer(ctx, err, usecase.OperationDelete, &domain.Task{ID: id, OwnerID: ownerID}) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) TaskStats(ctx context.Context, ownerID string) (*repository.TaskStats, error) {
	return uc.tasks.Stats(ctx, ownerID)
}

// shouldBuffer queues the operation for later replay when primary storage is
// unreachable. Expected outcomes (not-found, invalid) are never buffered.
func (uc *UseCase) shouldBuffer(ctx context.Context, err error, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return false
	}
	log := logger.FromContext(ctx, uc.logger)
	if bufErr := uc.buffer.BufferTask(ctx, operation, task); bufErr != nil {
		log.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(bufErr))
		return false
	}
	log.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}

// checkID rejects structurally invalid ids before any query runs. This is the
// one shape error reported distinctly from absence.
func checkID(id string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrInvalidTaskID
	}
	return nil
}
