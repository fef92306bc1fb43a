// Package pgerr классифицирует ошибки драйвера Postgres
package pgerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

const (
	CodeUniqueViolation      pq.ErrorCode = "23505"
	CodeExclusionViolation   pq.ErrorCode = "23P01"
	CodeSerializationFailure pq.ErrorCode = "40001"
	CodeDeadlockDetected     pq.ErrorCode = "40P01"
	CodeAdminShutdown        pq.ErrorCode = "57P01"
	CodeTooManyConnections   pq.ErrorCode = "53300"
)

// IsExclusionViolation нарушение EXCLUDE-ограничения
func IsExclusionViolation(err error) bool {
	return hasCode(err, CodeExclusionViolation)
}

// IsUniqueViolation нарушение уникальности; пустой constraint совпадает с любым
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != CodeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsUnavailable ошибки соединения: хранилище недоступно, повтор имеет смысл позже
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08" ||
			pqErr.Code == CodeAdminShutdown ||
			pqErr.Code == CodeTooManyConnections
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
