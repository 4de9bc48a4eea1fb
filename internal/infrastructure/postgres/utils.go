package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapPgError traduce los SQLSTATE relevantes para el libro mayor a errores de dominio.
// op describe la operación para el mensaje envolvente.
func mapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrSerialization, err)
	case codeCheckViolation:
		// CHECK (quantity >= 0): última barrera contra stock negativo.
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
