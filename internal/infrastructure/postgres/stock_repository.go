package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto; nil, nil si aún no tiene fila.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.Stock, error) {
	query := `SELECT product_id, quantity, last_updated FROM stock_levels WHERE product_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgError("get stock", err)
	}
	return s, nil
}

// GetForUpdate serializa a los escritores del producto hasta el fin de la transacción.
// El advisory lock cubre también productos sin fila todavía; el FOR UPDATE bloquea la fila existente.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, productID); err != nil {
		return nil, mapPgError("lock product", err)
	}
	query := `SELECT product_id, quantity, last_updated FROM stock_levels WHERE product_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, Implicit: true}, nil
		}
		return nil, mapPgError("get stock for update", err)
	}
	return s, nil
}

// Upsert inserta o actualiza la cantidad materializada del producto.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock_levels (product_id, quantity, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, last_updated = EXCLUDED.last_updated`
	if _, err := r.q.Exec(ctx, query, stock.ProductID, stock.Quantity, stock.LastUpdated); err != nil {
		return mapPgError("upsert stock", err)
	}
	return nil
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ProductID, &s.Quantity, &s.LastUpdated); err != nil {
		return nil, err
	}
	s.LastUpdated = s.LastUpdated.UTC()
	return &s, nil
}
