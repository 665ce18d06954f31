package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository instantiates a SQLite-backed user repository.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `INSERT INTO users (username, hashed_password) VALUES (?1, ?2) RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, user.Username, user.HashedPassword).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCodeConflict, domain.ErrUsernameTaken.Message, err)
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT id, username, hashed_password FROM users WHERE username = ?1`

	var user domain.User
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.HashedPassword); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
