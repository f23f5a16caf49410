package repository

import (
	stderrors "errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/errors"
)

// Sentinel errors for repository operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.NewStd("user not found")

	// ErrCustomerNotFound indicates the requested customer does not exist.
	ErrCustomerNotFound = errors.NewStd("customer not found")

	// ErrScriptNotFound indicates no active script exists.
	ErrScriptNotFound = errors.NewStd("script not found")

	// ErrSubmissionNotFound indicates the requested submission does not exist.
	ErrSubmissionNotFound = errors.NewStd("submission not found")

	// ErrSubmissionExists indicates the customer already has a submission.
	ErrSubmissionExists = errors.NewStd("submission already exists for customer")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.NewStd("duplicate key")
)

// mysqlDuplicateEntry is the MySQL server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation from
// either supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// notFound maps gorm.ErrRecordNotFound to sentinel and passes other errors through.
func notFound(err, sentinel error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
