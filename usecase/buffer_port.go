package usecase

import (
	"context"

	"github.com/taskhive/backend/domain"
)

// Operations the buffer can replay against the task repository.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the offline write buffer so use cases stay
// storage-agnostic. Only task mutations are buffered; auth paths always hit
// primary storage.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}
