package repository

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"blogapi/internal/apperror"
)

const mysqlDuplicateEntry = 1062

var duplicateKeyPattern = regexp.MustCompile(`for key '([^']+)'`)

// translateError converts storage errors into the application taxonomy at
// the repository boundary, so callers never see raw driver errors.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(resource + " not found")
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isDuplicateKey(err) {
		return apperror.NewDuplicateKey(duplicateKeyField(err), err)
	}
	return apperror.NewInternal("database error", err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// duplicateKeyField derives the conflicting field name from a MySQL
// duplicate-entry message, e.g.
// "Duplicate entry 'x' for key 'users.idx_users_email'" -> "email".
func duplicateKeyField(err error) string {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return "field"
	}
	match := duplicateKeyPattern.FindStringSubmatch(mysqlErr.Message)
	if match == nil {
		return "field"
	}
	key := match[1]
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	if i := strings.LastIndex(key, "_"); i >= 0 {
		key = key[i+1:]
	}
	if key == "" {
		return "field"
	}
	return key
}
