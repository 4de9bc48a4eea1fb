package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type captureRenderer struct {
	got *inventory.Kardex
}

func (r *captureRenderer) RenderKardex(_ context.Context, k *inventory.Kardex) ([]byte, error) {
	r.got = k
	return []byte("%PDF-fake"), nil
}

func TestKardex_SaldoCorridoTerminaEnStockActual(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 10, daysAgo(3))
	f.record(t, entity.MovementOut, 4, daysAgo(2))
	f.record(t, entity.MovementIn, 6, daysAgo(1))

	renderer := &captureRenderer{}
	uc := inventory.NewKardexUseCase(f.ledger, renderer)
	out, err := uc.RenderPDF(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)

	k := renderer.got
	require.NotNil(t, k)
	assert.Equal(t, productName, k.ProductName)
	require.Len(t, k.Lines, 3)
	assert.Equal(t, []int64{10, 6, 12}, []int64{k.Lines[0].Balance, k.Lines[1].Balance, k.Lines[2].Balance})
	assert.Equal(t, k.CurrentStock, k.Lines[2].Balance)
	assert.Equal(t, testNow, k.GeneratedAt)
}

func TestKardex_ProductoInexistente(t *testing.T) {
	f := newFixture(t, nil, nil)
	_, err := inventory.NewKardexUseCase(f.ledger, &captureRenderer{}).Build(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKardex_SinMovimientos(t *testing.T) {
	f := newFixture(t, nil, nil)
	k, err := inventory.NewKardexUseCase(f.ledger, &captureRenderer{}).Build(context.Background(), otherID)
	require.NoError(t, err)
	assert.Empty(t, k.Lines)
	assert.Zero(t, k.CurrentStock)
}
