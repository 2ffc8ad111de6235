package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type mockTaskRepo struct {
	getFunc    func(ctx context.Context, ownerID, id string) (*domain.Task, error)
	listFunc   func(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error)
	createFunc func(ctx context.Context, task *domain.Task) (*domain.Task, error)
	updateFunc func(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error)
	deleteFunc func(ctx context.Context, ownerID, id string) error

	lastOwner string
}

func (m *mockTaskRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	m.lastOwner = ownerID
	return m.getFunc(ctx, ownerID, id)
}

func (m *mockTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	m.lastOwner = filter.OwnerID
	return m.listFunc(ctx, filter)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	m.lastOwner = task.OwnerID
	return m.createFunc(ctx, task)
}

func (m *mockTaskRepo) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	m.lastOwner = ownerID
	return m.updateFunc(ctx, ownerID, id, patch)
}

func (m *mockTaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	m.lastOwner = ownerID
	return m.deleteFunc(ctx, ownerID, id)
}

func (m *mockTaskRepo) Stats(ctx context.Context, ownerID string) (*repository.TaskStats, error) {
	m.lastOwner = ownerID
	return &repository.TaskStats{}, nil
}

type mockBuffer struct {
	calls     int
	lastOp    string
	returnErr error
}

func (m *mockBuffer) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	m.calls++
	m.lastOp = operation
	return m.returnErr
}

func TestCreateTask_AppliesDefaults(t *testing.T) {
	repo := &mockTaskRepo{
		createFunc: func(ctx context.Context, task *domain.Task) (*domain.Task, error) {
			task.ID = uuid.NewString()
			return task, nil
		},
	}
	uc := New(repo, nil, nil)

	task, err := uc.CreateTask(context.Background(), "owner-1", CreateInput{Title: "Ship report"})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if task.Priority != domain.PriorityMedium || task.Status != domain.StatusTodo {
		t.Fatalf("defaults not applied: %+v", task)
	}
	if repo.lastOwner != "owner-1" {
		t.Fatalf("owner not propagated: %q", repo.lastOwner)
	}
}

func TestCreateTask_ValidationShortCircuits(t *testing.T) {
	repo := &mockTaskRepo{
		createFunc: func(ctx context.Context, task *domain.Task) (*domain.Task, error) {
			t.Fatal("repository must not be reached for an invalid payload")
			return nil, nil
		},
	}
	uc := New(repo, nil, nil)

	_, err := uc.CreateTask(context.Background(), "owner-1", CreateInput{Title: ""})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTask_RejectsMalformedID(t *testing.T) {
	uc := New(&mockTaskRepo{}, nil, nil)

	_, err := uc.UpdateTask(context.Background(), "owner-1", "not-a-uuid", domain.TaskPatch{})
	if err != domain.ErrInvalidTaskID {
		t.Fatalf("expected ErrInvalidTaskID, got %v", err)
	}
}

func TestUpdateTask_CrossOwnerLooksLikeAbsent(t *testing.T) {
	repo := &mockTaskRepo{
		updateFunc: func(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
			// The repository collapses cross-owner targets into not-found.
			return nil, domain.ErrTaskNotFound
		},
	}
	uc := New(repo, nil, nil)

	title := "hijack"
	_, err := uc.UpdateTask(context.Background(), "attacker", uuid.NewString(), domain.TaskPatch{Title: &title})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUpdateTask_EmptyPatchReadsBack(t *testing.T) {
	id := uuid.NewString()
	repo := &mockTaskRepo{
		getFunc: func(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
			return &domain.Task{ID: taskID, OwnerID: ownerID, Title: "unchanged"}, nil
		},
		updateFunc: func(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
			t.Fatal("empty patch must not hit Update")
			return nil, nil
		},
	}
	uc := New(repo, nil, nil)

	task, err := uc.UpdateTask(context.Background(), "owner-1", id, domain.TaskPatch{})
	if err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	if task.Title != "unchanged" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestDeleteTask_IdempotentNotFound(t *testing.T) {
	repo := &mockTaskRepo{
		deleteFunc: func(ctx context.Context, ownerID, id string) error {
			return domain.ErrTaskNotFound
		},
	}
	uc := New(repo, &mockBuffer{}, nil)

	err := uc.DeleteTask(context.Background(), "owner-1", uuid.NewString())
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteTask_BuffersOnInfrastructureError(t *testing.T) {
	repo := &mockTaskRepo{
		deleteFunc: func(ctx context.Context, ownerID, id string) error {
			return errors.New("connection refused")
		},
	}
	buf := &mockBuffer{}
	uc := New(repo, buf, nil)

	if err := uc.DeleteTask(context.Background(), "owner-1", uuid.NewString()); err != nil {
		t.Fatalf("expected buffered delete to succeed, got %v", err)
	}
	if buf.calls != 1 || buf.lastOp != "delete" {
		t.Fatalf("expected one buffered delete, got %d %q", buf.calls, buf.lastOp)
	}
}

func TestDeleteTask_NotFoundNeverBuffered(t *testing.T) {
	repo := &mockTaskRepo{
		deleteFunc: func(ctx context.Context, ownerID, id string) error {
			return domain.ErrTaskNotFound
		},
	}
	buf := &mockBuffer{}
	uc := New(repo, buf, nil)

	_ = uc.DeleteTask(context.Background(), "owner-1", uuid.NewString())
	if buf.calls != 0 {
		t.Fatalf("not-found must not be buffered, got %d calls", buf.calls)
	}
}

func TestListTasks_RejectsUnknownFilterValues(t *testing.T) {
	uc := New(&mockTaskRepo{}, nil, nil)

	_, err := uc.ListTasks(context.Background(), repository.TaskFilter{OwnerID: "owner-1", Status: "done"})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListTasks_RejectsNegativeOffset(t *testing.T) {
	repo := &mockTaskRepo{
		listFunc: func(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
			t.Fatalf("repository must not see offset %d", filter.Offset)
			return nil, nil
		},
	}
	uc := New(repo, nil, nil)

	_, err := uc.ListTasks(context.Background(), repository.TaskFilter{OwnerID: "owner-1", Offset: -5})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListTasks_EmptyResultIsNotAnError(t *testing.T) {
	repo := &mockTaskRepo{
		listFunc: func(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
			return []domain.Task{}, nil
		},
	}
	uc := New(repo, nil, nil)

	tasks, err := uc.ListTasks(context.Background(), repository.TaskFilter{OwnerID: "owner-1", Status: domain.StatusCompleted})
	if err != nil {
		t.Fatalf("ListTasks error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty result, got %d", len(tasks))
	}
}
