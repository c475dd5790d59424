// Package dberr classifies driver errors so repos can react to them without
// knowing which SQL backend is underneath.
package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/cashswap-backend/internal/domain"
)

// IsUniqueViolation reports a unique constraint failure on postgres (23505) or
// sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Map turns an infrastructure failure into a tagged domain error.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.CodeOf(err) != "" {
		return err
	}
	switch {
	case IsNotFound(err):
		return domain.NewError(domain.CodeNotFound, op, "not found", err)
	case IsUniqueViolation(err):
		return domain.NewError(domain.CodeConflict, op, "already exists", err)
	}
	return domain.Store(op, err)
}
