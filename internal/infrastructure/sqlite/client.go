package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fastygo/tasktracker/assets/migrations"
	"github.com/fastygo/tasktracker/internal/infrastructure/migrator"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Open opens the SQLite database at path, creating parent directories, and
// verifies the connection.
func Open(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	logger.Info("opened sqlite database", zap.String("path", cleanPath))
	return db, nil
}

// RunMigrations applies the sqlite schema through a dedicated connection.
func RunMigrations(path, overridePath string, logger *zap.Logger) error {
	db, err := sql.Open("sqlite", filepath.Clean(path)+pragmas)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migrate driver: %w", err)
	}
	return migrator.Up(driver, "sqlite", migrations.SQLiteDir, overridePath, logger)
}
