package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
)

// MovementRepo libro de movimientos en memoria. Dentro de una unidad de trabajo los
// movimientos quedan preparados hasta el commit; fuera de ella se publican al instante.
type MovementRepo struct {
	store *Store
	uow   *unitOfWork
}

// NewMovementRepository repositorio fuera de transacción (lecturas y semillas).
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{store: s}
}

func (r *MovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Sequence = r.store.seq.Add(1)
	if r.uow == nil {
		r.store.commit([]*entity.StockMovement{m}, nil)
		return nil
	}
	r.uow.movements = append(r.uow.movements, cloneMovement(m))
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.ProductID == productID }), nil
}

func (r *MovementRepo) ListByProductBetween(_ context.Context, productID string, from, to time.Time) ([]*entity.StockMovement, error) {
	in := between(from, to)
	return r.list(func(m *entity.StockMovement) bool { return m.ProductID == productID && in(m) }), nil
}

func (r *MovementRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entity.StockMovement, error) {
	return r.list(between(from, to)), nil
}

// list incluye los movimientos preparados por la propia unidad de trabajo.
func (r *MovementRepo) list(keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	list := r.store.selectMovements(keep)
	if r.uow == nil || len(r.uow.movements) == 0 {
		return list
	}
	for _, m := range r.uow.movements {
		if keep(m) {
			list = append(list, cloneMovement(m))
		}
	}
	sortMovements(list)
	return list
}

// StockRepo stock materializado en memoria.
type StockRepo struct {
	store *Store
	uow   *unitOfWork
}

// NewStockRepository repositorio fuera de transacción.
func NewStockRepository(s *Store) *StockRepo {
	return &StockRepo{store: s}
}

func (r *StockRepo) Get(_ context.Context, productID string) (*entity.Stock, error) {
	if r.uow != nil {
		if st, ok := r.uow.stock[productID]; ok {
			return &st, nil
		}
	}
	st, ok := r.store.getStock(productID)
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// GetForUpdate toma el candado del producto; se libera al terminar la unidad de trabajo.
// Fuera de una unidad de trabajo se comporta como Get con stock implícito.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	if r.uow != nil {
		if err := r.uow.lock(ctx, productID); err != nil {
			return nil, err
		}
	}
	st, err := r.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return &entity.Stock{ProductID: productID, Implicit: true}, nil
	}
	return st, nil
}

func (r *StockRepo) Upsert(_ context.Context, stock *entity.Stock) error {
	if stock.Quantity < 0 {
		return domain.ErrConflict
	}
	st := *stock
	st.ProductName = ""
	st.Implicit = false
	if r.uow == nil {
		r.store.commit(nil, map[string]entity.Stock{st.ProductID: st})
		return nil
	}
	if !r.uow.holds(st.ProductID) {
		return domain.ErrSerialization
	}
	r.uow.stock[st.ProductID] = st
	return nil
}

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el catálogo sobre el Store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{store: s}
}

func (r *ProductRepo) Exists(_ context.Context, productID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.products[productID]
	return ok, nil
}

func (r *ProductRepo) NameOf(_ context.Context, productID string) (string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.products[productID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p.Name, nil
}
