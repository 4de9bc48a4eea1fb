package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// Kind acepta IN/OUT (o INBOUND/OUTBOUND). Timestamp vacío = hora del servidor.
type RecordMovementRequest struct {
	ProductID string           `json:"product_id"`
	Kind      string           `json:"kind"`
	Quantity  int64            `json:"quantity"`
	Reason    string           `json:"reason,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
}

// RecordSaleRequest body para POST /api/inventory/sales.
type RecordSaleRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reference string          `json:"reference,omitempty"`
}

// SetStockRequest body para PUT /api/inventory/stock/:productId.
type SetStockRequest struct {
	Quantity *int64 `json:"quantity"`
}

// MovementResponse movimiento persistido.
type MovementResponse struct {
	ID        string           `json:"id"`
	Sequence  int64            `json:"sequence"`
	ProductID string           `json:"product_id"`
	Kind      string           `json:"kind"`
	Reason    string           `json:"reason"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy string           `json:"created_by,omitempty"`
}

// MovementListResponse movimientos de un producto en orden cronológico.
type MovementListResponse struct {
	ProductID string             `json:"product_id"`
	Total     int                `json:"total"`
	Movements []MovementResponse `json:"movements"`
}

// StockResponse stock actual. LastUpdated se omite si el producto nunca tuvo movimientos.
type StockResponse struct {
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int64      `json:"quantity"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Implicit    bool       `json:"implicit"`
}

// MovementFromEntity mapea un movimiento a su respuesta.
func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		Sequence:  m.Sequence,
		ProductID: m.ProductID,
		Kind:      string(m.Kind),
		Reason:    string(m.Reason),
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Reference: m.Reference,
		Notes:     m.Notes,
		Timestamp: m.OccurredAt,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

// MovementListFromEntities arma la lista; nunca devuelve Movements nil.
func MovementListFromEntities(productID string, list []*entity.StockMovement) MovementListResponse {
	out := MovementListResponse{ProductID: productID, Total: len(list), Movements: make([]MovementResponse, 0, len(list))}
	for _, m := range list {
		out.Movements = append(out.Movements, MovementFromEntity(m))
	}
	return out
}

// StockFromEntity mapea el stock a su respuesta.
func StockFromEntity(s *entity.Stock) StockResponse {
	out := StockResponse{
		ProductID:   s.ProductID,
		ProductName: s.ProductName,
		Quantity:    s.Quantity,
		Implicit:    s.Implicit,
	}
	if !s.LastUpdated.IsZero() {
		t := s.LastUpdated
		out.LastUpdated = &t
	}
	return out
}
