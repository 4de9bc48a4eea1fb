package repository

import "context"

// ProductRepository es el puerto hacia el catálogo de productos (colaborador externo).
type ProductRepository interface {
	Exists(ctx context.Context, productID string) (bool, error)
	// NameOf devuelve domain.ErrNotFound si el producto no existe.
	NameOf(ctx context.Context, productID string) (string, error)
}
