package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that change how an error is surfaced.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
	pgAdminShutdown        = "57P01"
	pgConnectionClass      = "08"
)

// translateError maps driver and GORM errors onto domain error kinds.
// Errors it does not recognise are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.WrapDomainError(shared.CodeConflict, "duplicate key", err)
	case errors.Is(err, context.DeadlineExceeded):
		return shared.NewTransientError("store call timed out", err)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return shared.NewTransientError("store connection lost", err)
	case pgconn.Timeout(err):
		return shared.NewTransientError("store call timed out", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return shared.WrapDomainError(shared.CodeConflict, "duplicate key: "+pgErr.ConstraintName, err)
		case pgErr.Code == pgSerializationFailure,
			pgErr.Code == pgDeadlockDetected,
			pgErr.Code == pgLockNotAvailable,
			pgErr.Code == pgQueryCanceled,
			pgErr.Code == pgAdminShutdown,
			strings.HasPrefix(pgErr.Code, pgConnectionClass):
			return shared.NewTransientError("store temporarily unavailable", err)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return shared.NewTransientError("store connection failed", err)
	}
	return err
}
