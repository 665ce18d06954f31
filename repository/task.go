package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// Sortable columns accepted by TaskFilter.SortBy.
var sortColumns = map[string]string{
	"title":      "title",
	"status":     "status",
	"created_at": "created_at",
}

// TaskFilter selects an owner's tasks. Zero values disable the optional parts.
type TaskFilter struct {
	OwnerID int64
	// Search keeps tasks whose title or description contains it (case-sensitive).
	Search string
	// TopPriority caps the result to that many rows ordered by priority descending.
	TopPriority int
	// SortBy replaces the ordering when it names a sortable column; unknown values are ignored.
	SortBy string
	Offset int
	Limit  int
}

// OrderBy returns the ORDER BY clause for the returned rows. A recognised
// SortBy wins over the TopPriority ordering; the TopPriority cap still applies
// through CapOrderBy. Ties break on id so pagination is stable.
func (f TaskFilter) OrderBy() string {
	if col, ok := sortColumns[f.SortBy]; ok {
		return col + " ASC, id ASC"
	}
	if f.TopPriority > 0 {
		return "priority DESC, id ASC"
	}
	return "id ASC"
}

// CapOrderBy is the ordering that picks the TopPriority rows before OrderBy
// reorders them.
func (f TaskFilter) CapOrderBy() string {
	return "priority DESC, id ASC"
}

// TaskRepository persists tasks. Every lookup that mutates is scoped by owner in
// a single statement; a task owned by someone else is reported as
// domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, ownerID, taskID int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
}
