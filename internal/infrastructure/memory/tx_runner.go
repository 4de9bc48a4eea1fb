package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks como una unidad de trabajo sobre el Store:
// todo lo preparado se publica junto al final o se descarta si fn falla.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	uow := &unitOfWork{store: r.store, stock: make(map[string]entity.Stock)}
	defer uow.release()

	if err := fn(&MovementRepo{store: r.store, uow: uow}, &StockRepo{store: r.store, uow: uow}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.commit(uow.movements, uow.stock)
	return nil
}

type unitOfWork struct {
	store     *Store
	movements []*entity.StockMovement
	stock     map[string]entity.Stock
	unlocks   map[string]func()
}

func (u *unitOfWork) lock(ctx context.Context, productID string) error {
	if u.holds(productID) {
		return nil
	}
	unlock, err := u.store.lock(ctx, productID)
	if err != nil {
		return err
	}
	if u.unlocks == nil {
		u.unlocks = make(map[string]func())
	}
	u.unlocks[productID] = unlock
	return nil
}

func (u *unitOfWork) holds(productID string) bool {
	_, ok := u.unlocks[productID]
	return ok
}

func (u *unitOfWork) release() {
	for _, unlock := range u.unlocks {
		unlock()
	}
	u.unlocks = nil
}
