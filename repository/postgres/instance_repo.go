package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/repository"
)

type instanceRepository struct {
	pool *pgxpool.Pool
}

func NewInstanceRepository(pool *pgxpool.Pool) repository.InstanceRepository {
	return &instanceRepository{pool: pool}
}

func (r *instanceRepository) InstanceID(ctx context.Context) (string, error) {
	var id string
	if err := r.pool.QueryRow(ctx, `SELECT id FROM store_instance LIMIT 1`).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("store instance id missing; run migrations")
		}
		return "", err
	}
	return id, nil
}
