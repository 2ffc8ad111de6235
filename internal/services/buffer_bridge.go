package services

import (
	"context"
	"encoding/json"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/infrastructure/buffer"
	"github.com/taskhive/backend/usecase"
)

// BufferBridge adapts the buffer processor to the use-case port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil || task.OwnerID == "" {
		return domain.ErrInvalidPayload
	}
	snapshot, err := json.Marshal(task)
	if err != nil {
		return err
	}
	item := buffer.Item{
		OwnerID:   task.OwnerID,
		TaskID:    task.ID,
		Operation: operation,
		Snapshot:  snapshot,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
