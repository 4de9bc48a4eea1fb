package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind dirección del movimiento: entrada suma, salida resta.
type MovementKind string

const (
	MovementIn  MovementKind = "IN"  // recepción, ajuste positivo, devolución
	MovementOut MovementKind = "OUT" // venta, despacho, ajuste negativo, merma
)

// ParseMovementKind acepta IN/OUT y los alias INBOUND/OUTBOUND sin distinguir mayúsculas.
func ParseMovementKind(s string) (MovementKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN", "INBOUND":
		return MovementIn, true
	case "OUT", "OUTBOUND":
		return MovementOut, true
	}
	return "", false
}

// Valid indica si el tipo es uno de los dos conocidos.
func (k MovementKind) Valid() bool {
	return k == MovementIn || k == MovementOut
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (k MovementKind) Sign() int64 {
	if k == MovementOut {
		return -1
	}
	return 1
}

// MovementReason documenta la intención del movimiento. No afecta el cálculo del stock:
// las correcciones se registran como movimientos nuevos, nunca editando los existentes.
// Solo las salidas SALE cuentan como demanda.
type MovementReason string

const (
	ReasonReceipt    MovementReason = "RECEIPT"
	ReasonSale       MovementReason = "SALE"
	ReasonAdjustment MovementReason = "ADJUSTMENT"
	ReasonCorrection MovementReason = "CORRECTION"
	ReasonSpoilage   MovementReason = "SPOILAGE"
	ReasonReturn     MovementReason = "RETURN"
)

// Valid indica si la razón es conocida.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonReceipt, ReasonSale, ReasonAdjustment, ReasonCorrection, ReasonSpoilage, ReasonReturn:
		return true
	}
	return false
}

// DefaultReason razón asumida cuando el cliente no envía una.
func DefaultReason(k MovementKind) MovementReason {
	if k == MovementOut {
		return ReasonSale
	}
	return ReasonReceipt
}

// StockMovement registro inmutable del libro de movimientos (append-only).
// Quantity siempre es positiva; el signo lo da Kind.
type StockMovement struct {
	ID         string
	Sequence   int64 // orden de inserción; desempata OccurredAt iguales
	ProductID  string
	Kind       MovementKind
	Reason     MovementReason
	Quantity   int64
	UnitPrice  *decimal.Decimal // opcional, se transporta sin interpretar
	Reference  string           // factura, orden, nota de ajuste, etc.
	Notes      string
	OccurredAt time.Time
	CreatedAt  time.Time
	CreatedBy  string
}

// SignedQuantity cantidad con signo según el tipo.
func (m *StockMovement) SignedQuantity() int64 {
	return m.Kind.Sign() * m.Quantity
}
