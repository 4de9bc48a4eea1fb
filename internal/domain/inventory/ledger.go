package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyMovement calcula el stock resultante de aplicar un movimiento (servicio de dominio).
// NuevoStock = StockActual ± Cantidad; nunca negativo. Una entrada que desborde int64 es
// entrada inválida, nunca un conflicto.
func ApplyMovement(current int64, kind entity.MovementKind, quantity int64) (int64, error) {
	if quantity <= 0 || !kind.Valid() {
		return current, domain.ErrInvalidInput
	}
	if kind == entity.MovementIn && quantity > math.MaxInt64-current {
		return current, fmt.Errorf("%w: la entrada excede el stock máximo representable", domain.ErrInvalidInput)
	}
	next := current + kind.Sign()*quantity
	if next < 0 {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// Replay reconstruye el stock sumando con signo todos los movimientos.
// Debe coincidir siempre con la fila materializada.
func Replay(movements []*entity.StockMovement) int64 {
	var total int64
	for _, m := range movements {
		total += m.SignedQuantity()
	}
	return total
}

// AdjustmentFor devuelve el movimiento (tipo y cantidad) que lleva el stock de current a target.
// ok es false cuando no hace falta movimiento.
func AdjustmentFor(current, target int64) (kind entity.MovementKind, quantity int64, ok bool) {
	switch delta := target - current; {
	case delta > 0:
		return entity.MovementIn, delta, true
	case delta < 0:
		return entity.MovementOut, -delta, true
	}
	return "", 0, false
}
