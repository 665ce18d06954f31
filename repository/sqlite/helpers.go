package sqlite

import (
	"errors"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func isUniqueViolation(err error) bool {
	var sqlErr *sqlitedrv.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// fromMillis restores a unix-millisecond column as UTC time.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
