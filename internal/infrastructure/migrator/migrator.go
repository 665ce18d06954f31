package migrator

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/assets/migrations"
)

// Up applies every pending migration for dialect dir against driver. Files are
// read from overridePath/dir when overridePath is set, otherwise from the
// embedded set. The driver is closed on return.
func Up(driver database.Driver, dbName, dir, overridePath string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		m   *migrate.Migrate
		err error
	)
	if overridePath != "" {
		sourceURL := fmt.Sprintf("file://%s", filepath.ToSlash(filepath.Join(overridePath, dir)))
		m, err = migrate.NewWithDatabaseInstance(sourceURL, dbName, driver)
	} else {
		src, srcErr := iofs.New(migrations.FS, dir)
		if srcErr != nil {
			return fmt.Errorf("open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithInstance("iofs", src, dbName, driver)
	}
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", verr)
	}
	logger.Info("database migrations applied",
		zap.String("dialect", dir),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
