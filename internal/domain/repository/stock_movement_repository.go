package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de movimientos.
// Es append-only: no existe Update ni Delete.
type StockMovementRepository interface {
	// Append persiste el movimiento y le asigna ID y Sequence.
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve todos los movimientos del producto ordenados por OccurredAt y Sequence.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	// ListByProductBetween devuelve los movimientos del producto en [from, to), mismo orden.
	ListByProductBetween(ctx context.Context, productID string, from, to time.Time) ([]*entity.StockMovement, error)
	// ListBetween devuelve los movimientos de todos los productos en [from, to), mismo orden.
	ListBetween(ctx context.Context, from, to time.Time) ([]*entity.StockMovement, error)
}
