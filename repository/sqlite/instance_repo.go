package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastygo/tasktracker/repository"
)

type instanceRepository struct {
	db *sql.DB
}

func NewInstanceRepository(db *sql.DB) repository.InstanceRepository {
	return &instanceRepository{db: db}
}

func (r *instanceRepository) InstanceID(ctx context.Context) (string, error) {
	var id string
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM store_instance LIMIT 1`).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("store instance id missing; run migrations")
		}
		return "", err
	}
	return id, nil
}
