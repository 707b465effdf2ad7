package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/equipment-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes para el libro de stock.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014" // statement_timeout
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// isContention indica un fallo transitorio por acceso concurrente al mismo registro.
func isContention(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected, codeQueryCanceled:
			return true
		}
	}
	return false
}

// classify traduce errores de PostgreSQL a errores de dominio conservando la causa.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isContention(err):
		return fmt.Errorf("%w: %v", domain.ErrContention, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}
