package inventory_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestExportMovements_RangoInclusivoPorDia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 10, time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC))
	f.record(t, entity.MovementOut, 3, time.Date(2026, 10, 3, 23, 59, 0, 0, time.UTC))
	f.record(t, entity.MovementOut, 2, time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC))

	uc := inventory.NewExportUseCase(f.catalog, f.movRepo)
	var buf bytes.Buffer
	n, err := uc.ExportMovements(ctx,
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
		productID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "IN", records[1][2])
	assert.Equal(t, "-3", records[2][5])
	assert.Equal(t, "2026-10-03T23:59:00Z", records[2][9])
}

func TestExportMovements_TodosLosProductos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	f.record(t, entity.MovementIn, 10, daysAgo(1))
	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: otherID, Kind: entity.MovementIn, Quantity: 4})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := inventory.NewExportUseCase(f.catalog, f.movRepo).ExportMovements(ctx, daysAgo(2), testNow, "", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExportMovements_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	uc := inventory.NewExportUseCase(f.catalog, f.movRepo)
	var buf bytes.Buffer

	_, err := uc.ExportMovements(ctx, testNow, daysAgo(1), "", &buf)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ExportMovements(ctx, daysAgo(1), testNow, "no-existe", &buf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
