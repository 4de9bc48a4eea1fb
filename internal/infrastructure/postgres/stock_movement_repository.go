package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, seq, product_id, kind, reason, quantity, unit_price, reference, notes, occurred_at, created_at, created_by`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
// No hay UPDATE ni DELETE sobre stock_movements.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento y completa ID y Sequence.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var createdBy *string
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	query := `
		INSERT INTO stock_movements (id, product_id, kind, reason, quantity, unit_price, reference, notes, occurred_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, string(m.Kind), string(m.Reason), m.Quantity, m.UnitPrice,
		m.Reference, m.Notes, m.OccurredAt, m.CreatedAt, createdBy,
	).Scan(&m.Sequence)
	if err != nil {
		return mapPgError("append stock movement", err)
	}
	return nil
}

// ListByProduct lista todos los movimientos del producto en orden cronológico.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1
		ORDER BY occurred_at, seq`
	return r.list(ctx, "list by product", query, productID)
}

// ListByProductBetween lista los movimientos del producto con occurred_at en [from, to).
func (r *StockMovementRepo) ListByProductBetween(ctx context.Context, productID string, from, to time.Time) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at, seq`
	return r.list(ctx, "list by product between", query, productID, from, to)
}

// ListBetween lista los movimientos de todos los productos con occurred_at en [from, to).
func (r *StockMovementRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at, seq`
	return r.list(ctx, "list between", query, from, to)
}

func (r *StockMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(op, err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(op, err)
	}
	return list, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m         entity.StockMovement
		kind      string
		reason    string
		price     *decimal.Decimal
		createdBy *string
	)
	if err := row.Scan(&m.ID, &m.Sequence, &m.ProductID, &kind, &reason, &m.Quantity, &price,
		&m.Reference, &m.Notes, &m.OccurredAt, &m.CreatedAt, &createdBy); err != nil {
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	m.Kind = entity.MovementKind(kind)
	m.Reason = entity.MovementReason(reason)
	m.UnitPrice = price
	m.OccurredAt = m.OccurredAt.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
