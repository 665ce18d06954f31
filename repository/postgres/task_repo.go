package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const taskColumns = "id, title, description, status, priority, created_at, owner_id"

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, status, priority, owner_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.OwnerID,
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *taskRepository) Update(ctx context.Context, ownerID, taskID int64, patch domain.TaskPatch) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET title = COALESCE($3, title),
		description = CASE WHEN $4::boolean THEN $5::text ELSE description END,
		status = COALESCE($6, status),
		priority = COALESCE($7, priority)
	WHERE id = $1 AND owner_id = $2
	RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		taskID,
		ownerID,
		patch.Title,
		patch.SetsDescription(),
		patch.DescriptionValue(),
		patch.Status,
		patch.Priority,
	)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, taskID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// buildListQuery renders the owner-scoped list. With TopPriority the capped
// set is selected first and pagination runs inside it.
func buildListQuery(f repository.TaskFilter) (string, []interface{}) {
	args := []interface{}{f.OwnerID}
	where := "owner_id = $1"
	if f.Search != "" {
		args = append(args, f.Search)
		n := len(args)
		where += fmt.Sprintf(" AND (strpos(title, $%d) > 0 OR strpos(COALESCE(description, ''), $%d) > 0)", n, n)
	}

	order := f.OrderBy()
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s", taskColumns, where, order)
	if f.TopPriority > 0 {
		args = append(args, f.TopPriority)
		capped := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d", taskColumns, where, f.CapOrderBy(), len(args))
		query = fmt.Sprintf("SELECT %s FROM (%s) AS capped ORDER BY %s", taskColumns, capped, order)
	}

	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return query, args
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.CreatedAt,
		&task.OwnerID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
