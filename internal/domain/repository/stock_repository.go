package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar el stock materializado por producto.
// Solo el libro mayor escribe; el resto de componentes lee.
type StockRepository interface {
	// Get devuelve nil, nil si el producto aún no tiene fila de stock.
	Get(ctx context.Context, productID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	// Si no existe devuelve un stock implícito en cero.
	GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
}
