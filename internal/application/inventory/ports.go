package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad {movimiento, stock}: ambos se confirman o ninguno.
// Si la transacción pierde una carrera de serialización debe devolver un error que
// satisfaga errors.Is(err, domain.ErrSerialization).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}
