package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Registro de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_EntradaYSalidaSinStockSuficiente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	mov, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, mov.ID)
	assert.Equal(t, entity.ReasonReceipt, mov.Reason)
	assert.Equal(t, testNow, mov.OccurredAt)
	assert.Equal(t, int64(10), f.stock(t, productID))

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementOut, Quantity: 15})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(15), insufficient.Requested)
	assert.Equal(t, int64(10), insufficient.Available)
	assert.Equal(t, productName, insufficient.ProductName)

	assert.Equal(t, int64(10), f.stock(t, productID))
	list, err := f.ledger.GetMovementsForProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordMovement_SalidaDescuentaStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 100, testNow.Add(-time.Hour))

	out, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementOut, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(90), f.stock(t, productID))

	list, err := f.ledger.GetMovementsForProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, out.ID, list[1].ID)
	assert.Equal(t, entity.MovementOut, list[1].Kind)
	assert.Equal(t, entity.ReasonSale, list[1].Reason)
}

func TestRecordMovement_ProductoInexistenteNoCambiaNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: "no-existe", Kind: entity.MovementIn, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := f.movRepo.ListBetween(ctx, time.Time{}, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, all)
	s, err := f.stockRepo.Get(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRecordMovement_EntradasInvalidas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	negative := decimal.NewFromInt(-1)

	cases := map[string]inventory.MovementInputDTO{
		"cantidad cero":     {ProductID: productID, Kind: entity.MovementIn, Quantity: 0},
		"cantidad negativa": {ProductID: productID, Kind: entity.MovementIn, Quantity: -3},
		"tipo desconocido":  {ProductID: productID, Kind: "TRANSFER", Quantity: 1},
		"razón desconocida": {ProductID: productID, Kind: entity.MovementIn, Reason: "GIFT", Quantity: 1},
		"precio negativo":   {ProductID: productID, Kind: entity.MovementIn, Quantity: 1, UnitPrice: &negative},
		"sin producto":      {Kind: entity.MovementIn, Quantity: 1},
	}
	for name, in := range cases {
		_, err := f.ledger.RecordMovement(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
	assert.Equal(t, int64(0), f.stock(t, productID))
}

func TestRecordMovement_EntradaQueDesbordaNoEsStockInsuficiente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, math.MaxInt64, testNow.Add(-time.Hour))

	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(math.MaxInt64), f.stock(t, productID))

	list, err := f.ledger.GetMovementsForProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordMovement_RechazaFechaAnteriorAlUltimoMovimiento(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 10, testNow.Add(-time.Hour))

	past := testNow.Add(-2 * time.Hour)
	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 1, OccurredAt: &past})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(10), f.stock(t, productID))

	future := testNow.Add(24 * time.Hour)
	f.record(t, entity.MovementIn, 1, future)
	assert.Equal(t, int64(11), f.stock(t, productID))
}

func TestRecordMovement_CorreccionConMovimientoCompensatorio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 50, testNow.Add(-time.Hour))

	// Se recibieron 45, no 50: la corrección es una salida nueva, el original no se toca.
	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{
		ProductID: productID, Kind: entity.MovementOut, Reason: entity.ReasonCorrection, Quantity: 5, Notes: "recepción mal contada",
	})
	require.NoError(t, err)

	list, err := f.ledger.GetMovementsForProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(50), list[0].Quantity)
	assert.Equal(t, entity.ReasonCorrection, list[1].Reason)
	assert.Equal(t, int64(45), f.stock(t, productID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas y ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_ExigePrecioPositivo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 5, testNow.Add(-time.Hour))

	_, err := f.ledger.RecordSale(ctx, inventory.SaleInputDTO{ProductID: productID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mov, err := f.ledger.RecordSale(ctx, inventory.SaleInputDTO{
		ProductID: productID, UserID: testUser, Quantity: 2, UnitPrice: decimal.RequireFromString("12500.50"), Reference: "OV-77",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementOut, mov.Kind)
	assert.Equal(t, entity.ReasonSale, mov.Reason)
	require.NotNil(t, mov.UnitPrice)
	assert.Equal(t, "12500.50", mov.UnitPrice.StringFixed(2))
	assert.Equal(t, testUser, mov.CreatedBy)
	assert.Equal(t, int64(3), f.stock(t, productID))

	_, err = f.ledger.RecordSale(ctx, inventory.SaleInputDTO{ProductID: productID, Quantity: 4, UnitPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSetStock_RegistraAjustePorLaDiferencia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 20, testNow.Add(-time.Hour))

	s, err := f.ledger.SetStock(ctx, productID, 12, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(12), s.Quantity)
	assert.Equal(t, productName, s.ProductName)

	s, err = f.ledger.SetStock(ctx, productID, 30, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(30), s.Quantity)

	list, err := f.ledger.GetMovementsForProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, entity.MovementOut, list[1].Kind)
	assert.Equal(t, int64(8), list[1].Quantity)
	assert.Equal(t, entity.ReasonAdjustment, list[1].Reason)
	assert.Equal(t, entity.MovementIn, list[2].Kind)
	assert.Equal(t, int64(18), list[2].Quantity)
	assert.Equal(t, f.stock(t, productID), f.replay(t, productID))
}

func TestSetStock_MismoValorNoRegistraMovimiento(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 7, testNow.Add(-time.Hour))

	s, err := f.ledger.SetStock(ctx, productID, 7, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Quantity)

	list, _ := f.ledger.GetMovementsForProduct(ctx, productID)
	assert.Len(t, list, 1)
}

func TestSetStock_NegativoEsInvalido(t *testing.T) {
	f := newFixture(t, nil, nil)
	_, err := f.ledger.SetStock(context.Background(), productID, -1, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetCurrentStock_ProductoSinMovimientosEsCeroImplicito(t *testing.T) {
	f := newFixture(t, nil, nil)
	s, err := f.ledger.GetCurrentStock(context.Background(), otherID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Quantity)
	assert.True(t, s.Implicit)
	assert.True(t, s.LastUpdated.IsZero())

	_, err = f.ledger.GetCurrentStock(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetCurrentStock_LecturasRepetidasSonIguales(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 4, testNow.Add(-time.Hour))

	a, err := f.ledger.GetCurrentStock(context.Background(), productID)
	require.NoError(t, err)
	b, err := f.ledger.GetCurrentStock(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.False(t, a.Implicit)
}

func TestGetMovementsForProduct_ListaVaciaNoNil(t *testing.T) {
	f := newFixture(t, nil, nil)
	list, err := f.ledger.GetMovementsForProduct(context.Background(), otherID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetMovementsForProduct_EmpatesPorOrdenDeInsercion(t *testing.T) {
	f := newFixture(t, nil, nil)
	at := testNow.Add(-time.Minute)
	first := f.record(t, entity.MovementIn, 1, at)
	second := f.record(t, entity.MovementIn, 2, at)
	third := f.record(t, entity.MovementOut, 1, at)

	list, err := f.ledger.GetMovementsForProduct(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y reintentos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_SalidasConcurrentesNuncaDejanStockNegativo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 25, testNow.Add(-time.Hour))

	const workers = 20
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementOut, Quantity: 3})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, ok)
	assert.Equal(t, 12, rejected)
	assert.Equal(t, int64(1), f.stock(t, productID))
	assert.Equal(t, int64(1), f.replay(t, productID))
}

func TestRecordMovement_ProductosDistintosSonIndependientes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	var wg sync.WaitGroup
	for _, id := range []string{productID, otherID} {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: id, Kind: entity.MovementIn, Quantity: 2})
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	assert.Equal(t, int64(20), f.stock(t, productID))
	assert.Equal(t, int64(20), f.stock(t, otherID))
	assert.Equal(t, int64(20), f.replay(t, otherID))
}

func TestRecordMovement_ReintentaConflictosDeSerializacion(t *testing.T) {
	var flaky *flakyRunner
	f := newFixture(t, func(inner inventory.TxRunner) inventory.TxRunner {
		flaky = &flakyRunner{inner: inner, failures: 2}
		return flaky
	}, retries(3))

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, int32(3), flaky.calls.Load())
	assert.Equal(t, int64(5), f.stock(t, productID))
	assert.Equal(t, int64(5), f.replay(t, productID))
}

func TestRecordMovement_ReintentosAgotadosEsConflicto(t *testing.T) {
	var flaky *flakyRunner
	f := newFixture(t, func(inner inventory.TxRunner) inventory.TxRunner {
		flaky = &flakyRunner{inner: inner, failures: 100}
		return flaky
	}, retries(2))

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int32(3), flaky.calls.Load())
	assert.Equal(t, int64(0), f.stock(t, productID))
}

func TestRecordMovement_StockInsuficienteNoSeReintenta(t *testing.T) {
	var flaky *flakyRunner
	f := newFixture(t, func(inner inventory.TxRunner) inventory.TxRunner {
		flaky = &flakyRunner{inner: inner}
		return flaky
	}, retries(5))

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int32(1), flaky.calls.Load())
}

func TestRecordMovement_SinReintentosFallaAlPrimerConflicto(t *testing.T) {
	var flaky *flakyRunner
	f := newFixture(t, func(inner inventory.TxRunner) inventory.TxRunner {
		flaky = &flakyRunner{inner: inner, failures: 1}
		return flaky
	}, retries(0))

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int32(1), flaky.calls.Load())
	assert.Equal(t, int64(0), f.stock(t, productID))
}

func TestRecordMovement_ReintentosPorDefectoSonCinco(t *testing.T) {
	var flaky *flakyRunner
	f := newFixture(t, func(inner inventory.TxRunner) inventory.TxRunner {
		flaky = &flakyRunner{inner: inner, failures: 100}
		return flaky
	}, nil)

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{ProductID: productID, Kind: entity.MovementIn, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int32(6), flaky.calls.Load())
}
