package inventory_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	productID   = "prod-cafe"
	productName = "Café molido 500g"
	otherID     = "prod-te"
	testUser    = "user-1"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	runner    inventory.TxRunner
	catalog   repository.ProductRepository
	movRepo   repository.StockMovementRepository
	stockRepo repository.StockRepository
	ledger    *inventory.LedgerUseCase
	demand    *inventory.DemandUseCase
}

// retries devuelve un puntero para LedgerOptions.MaxRetries.
func retries(n uint) *uint { return &n }

// newFixture arma los casos de uso sobre el almacén en memoria con reloj fijo.
// wrap permite envolver el TxRunner (p.ej. para simular conflictos); maxRetries nil = por defecto.
func newFixture(t *testing.T, wrap func(inventory.TxRunner) inventory.TxRunner, maxRetries *uint) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: productID, SKU: "CAF-500", Name: productName})
	store.AddProduct(entity.Product{ID: otherID, SKU: "TE-100", Name: "Té verde"})

	var runner inventory.TxRunner = memory.NewTxRunner(store)
	if wrap != nil {
		runner = wrap(runner)
	}
	f := &fixture{
		store:     store,
		runner:    runner,
		catalog:   memory.NewProductRepository(store),
		movRepo:   memory.NewMovementRepository(store),
		stockRepo: memory.NewStockRepository(store),
	}
	clock := func() time.Time { return testNow }
	f.ledger = inventory.NewLedgerUseCase(runner, f.catalog, f.movRepo, f.stockRepo, inventory.LedgerOptions{
		MaxRetries: maxRetries,
		Clock:      clock,
	})
	f.demand = inventory.NewDemandUseCase(f.catalog, f.movRepo, 90, clock)
	return f
}

func (f *fixture) record(t *testing.T, kind entity.MovementKind, qty int64, at time.Time) *entity.StockMovement {
	t.Helper()
	mov, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
		ProductID:  productID,
		UserID:     testUser,
		Kind:       kind,
		Quantity:   qty,
		OccurredAt: &at,
	})
	require.NoError(t, err)
	return mov
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	s, err := f.ledger.GetCurrentStock(context.Background(), id)
	require.NoError(t, err)
	return s.Quantity
}

func (f *fixture) replay(t *testing.T, id string) int64 {
	t.Helper()
	list, err := f.ledger.GetMovementsForProduct(context.Background(), id)
	require.NoError(t, err)
	var sum int64
	for _, m := range list {
		sum += m.SignedQuantity()
	}
	return sum
}

// flakyRunner falla con ErrSerialization las primeras failures llamadas.
type flakyRunner struct {
	inner    inventory.TxRunner
	failures int32
	calls    atomic.Int32
}

func (r *flakyRunner) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.StockRepository) error) error {
	n := r.calls.Add(1)
	if n <= r.failures {
		return domain.ErrSerialization
	}
	return r.inner.Run(ctx, fn)
}
