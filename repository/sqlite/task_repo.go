package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const taskColumns = "id, title, description, status, priority, created_at, owner_id"

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed implementation of TaskRepository.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, status, priority, owner_id)
	VALUES (?1, ?2, ?3, ?4, ?5)
	RETURNING id, created_at
	`

	var createdAt int64
	if err := r.db.QueryRowContext(ctx, query,
		task.Title,
		nullString(task.Description),
		task.Status,
		task.Priority,
		task.OwnerID,
	).Scan(&task.ID, &createdAt); err != nil {
		return err
	}
	task.CreatedAt = fromMillis(createdAt)
	return nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	SET title = COALESCE(?3, title),
		description = CASE WHEN ?4 THEN ?5 ELSE description END,
		status = COALESCE(?6, status),
		priority = COALESCE(?7, priority)
	WHERE id = ?1 AND owner_id = ?2
	RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		taskID,
		ownerID,
		nullString(patch.Title),
		patch.SetsDescription(),
		nullString(patch.DescriptionValue()),
		nullString(patch.Status),
		nullInt(patch.Priority),
	)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	const query = `DELETE FROM tasks WHERE id = ?1 AND owner_id = ?2`
	res, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// buildListQuery mirrors the Postgres query; instr is SQLite's case-sensitive
// substring test (LIKE folds ASCII case here).
func buildListQuery(f repository.TaskFilter) (string, []interface{}) {
	args := []interface{}{f.OwnerID}
	where := "owner_id = ?1"
	if f.Search != "" {
		args = append(args, f.Search)
		n := len(args)
		where += fmt.Sprintf(" AND (instr(title, ?%d) > 0 OR instr(COALESCE(description, ''), ?%d) > 0)", n, n)
	}

	order := f.OrderBy()
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s", taskColumns, where, order)
	if f.TopPriority > 0 {
		args = append(args, f.TopPriority)
		capped := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT ?%d", taskColumns, where, f.CapOrderBy(), len(args))
		query = fmt.Sprintf("SELECT %s FROM (%s) AS capped ORDER BY %s", taskColumns, capped, order)
	}

	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" LIMIT ?%d OFFSET ?%d", len(args)-1, len(args))
	return query, args
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		createdAt   int64
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&createdAt,
		&task.OwnerID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	if description.Valid {
		value := description.String
		task.Description = &value
	}
	task.CreatedAt = fromMillis(createdAt)
	return &task, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
