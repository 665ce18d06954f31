package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
)

// DefaultListLimit is the page size when the caller does not supply one.
const DefaultListLimit = 100

var errPriorityRange = domain.Invalid("priority is out of range")

// CreateInput holds the fields of a new task. Nil Status and Priority take the defaults.
type CreateInput struct {
	Title       string
	Description *string
	Status      *string
	Priority    *int
}

// ListOptions are the caller-facing list parameters. A nil Limit means DefaultListLimit.
type ListOptions struct {
	Skip        int
	Limit       *int
	SortBy      string
	Search      string
	TopPriority int
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// CreateTask persists a task owned by owner.
func (uc *UseCase) CreateTask(ctx context.Context, owner *domain.User, in CreateInput) (*domain.Task, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Invalid("title is required")
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.DefaultTaskStatus,
		Priority:    domain.DefaultTaskPriority,
		OwnerID:     owner.ID,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !domain.ValidPriority(*in.Priority) {
			return nil, errPriorityRange
		}
		task.Priority = *in.Priority
	}

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("owner_id", owner.ID))
	return task, nil
}

// ListTasks returns owner's tasks filtered, ordered and paginated per opts.
func (uc *UseCase) ListTasks(ctx context.Context, owner *domain.User, opts ListOptions) ([]domain.Task, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}
	limit := DefaultListLimit
	if opts.Limit != nil {
		limit = *opts.Limit
	}
	if opts.Skip < 0 || limit < 0 || opts.TopPriority < 0 {
		return nil, domain.Invalid("skip, limit and top_priority must not be negative")
	}

	return uc.tasks.List(ctx, repository.TaskFilter{
		OwnerID:     owner.ID,
		Search:      opts.Search,
		TopPriority: opts.TopPriority,
		SortBy:      opts.SortBy,
		Offset:      opts.Skip,
		Limit:       limit,
	})
}

// UpdateTask applies patch to owner's task. Another owner's task is reported
// as domain.ErrTaskNotFound.
func (uc *UseCase) UpdateTask(ctx context.Context, owner *domain.User, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, domain.Invalid("title must not be empty")
	}
	if patch.Priority != nil && !domain.ValidPriority(*patch.Priority) {
		return nil, errPriorityRange
	}
	return uc.tasks.Update(ctx, owner.ID, taskID, patch)
}

// DeleteTask permanently removes owner's task.
func (uc *UseCase) DeleteTask(ctx context.Context, owner *domain.User, taskID int64) error {
	if owner == nil {
		return domain.ErrUnauthorized
	}
	if err := uc.tasks.Delete(ctx, owner.ID, taskID); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task deleted",
		zap.Int64("task_id", taskID),
		zap.Int64("owner_id", owner.ID))
	return nil
}
