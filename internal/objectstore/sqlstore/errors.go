package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/bucketfs/internal/errs"
)

// PostgreSQL SQLSTATE codes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrConnectionFailure   = "08006"
	pgErrConnectionException = "08000"
	pgErrCannotConnectNow    = "57P03"
	pgErrInsufficientPriv    = "42501"
	pgErrInvalidPassword     = "28P01"
	pgErrForeignKey          = "23503"
	pgErrQueryCanceled       = "57014"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errNoReferencedRow = 1452
	errAccessDenied    = 1045
	errTableAccess     = 1142
	errConnRefused     = 2003
	errUnknownDatabase = 1049
	errLockWaitTimeout = 1205
)

// mapError converts a driver error into an *errs.Error. Values that are
// already *errs.Error pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errs.KindOf(err) != errs.ErrKindUnknown {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, "record not found", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, "query cancelled", err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return errs.Wrap(errs.ErrKindConnectionFailed, "database connection closed", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrConnectionFailure, pgErrConnectionException, pgErrCannotConnectNow:
			return errs.Wrap(errs.ErrKindConnectionFailed, "database connection failed", err)
		case pgErrInsufficientPriv, pgErrInvalidPassword:
			return errs.Wrap(errs.ErrKindPermissionDenied, fmt.Sprintf("access denied: %s", pgErr.Message), err)
		case pgErrForeignKey:
			return errs.Wrap(errs.ErrKindNotFound, "bucket does not exist", err)
		case pgErrQueryCanceled:
			return errs.Wrap(errs.ErrKindTimeout, "query cancelled", err)
		}
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errConnRefused, errUnknownDatabase:
			return errs.Wrap(errs.ErrKindConnectionFailed, fmt.Sprintf("connection error: %s", mysqlErr.Message), err)
		case errAccessDenied, errTableAccess:
			return errs.Wrap(errs.ErrKindPermissionDenied, fmt.Sprintf("access denied: %s", mysqlErr.Message), err)
		case errNoReferencedRow:
			return errs.Wrap(errs.ErrKindNotFound, "bucket does not exist", err)
		case errLockWaitTimeout:
			return errs.Wrap(errs.ErrKindTimeout, "lock wait timeout", err)
		}
	}

	return errs.Wrap(errs.ErrKindOperationFailed, err.Error(), err)
}
