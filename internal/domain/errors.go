package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// La capa HTTP los traduce: ErrNotFound → 404, ErrInvalidInput → 400, ErrConflict → 409.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrInsufficientStock es un rechazo de negocio; también satisface errors.Is(err, ErrConflict).
	ErrInsufficientStock = fmt.Errorf("stock insuficiente: %w", ErrConflict)

	// ErrSerialization marca una transacción que perdió la carrera por la fila de stock.
	// Es el único error que el libro mayor reintenta.
	ErrSerialization = errors.New("conflicto de serialización")
)

// InsufficientStockError detalla un rechazo por stock insuficiente (producto, solicitado, disponible).
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
