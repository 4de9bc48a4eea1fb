package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lee el catálogo de productos. El catálogo lo administra otro sistema;
// Create existe para semillas y pruebas.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Un producto existente devuelve domain.ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO products (id, sku, name, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, p.ID, p.SKU, p.Name, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Exists indica si el catálogo conoce el producto.
func (r *ProductRepo) Exists(ctx context.Context, productID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists product: %w", err)
	}
	return ok, nil
}

// NameOf devuelve el nombre del producto o domain.ErrNotFound.
func (r *ProductRepo) NameOf(ctx context.Context, productID string) (string, error) {
	var name string
	err := r.q.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get product name: %w", err)
	}
	return name, nil
}
