package entity

import "time"

// Stock representa el stock actual de un producto (vista materializada del libro de movimientos).
// Quantity siempre es igual a la suma con signo de los movimientos del producto y nunca es negativa.
type Stock struct {
	ProductID   string
	ProductName string
	Quantity    int64
	LastUpdated time.Time
	// Implicit es true cuando el producto existe pero aún no tiene movimientos (cantidad 0 implícita).
	Implicit bool
}
