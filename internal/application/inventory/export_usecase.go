package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var exportHeader = []string{
	"id", "product_id", "kind", "reason", "quantity", "signed_quantity",
	"unit_price", "reference", "notes", "occurred_at", "created_by",
}

// ExportUseCase exporta el libro de movimientos en CSV para análisis externo.
type ExportUseCase struct {
	catalog repository.ProductRepository
	movRepo repository.StockMovementRepository
}

// NewExportUseCase construye el caso de uso de exportación.
func NewExportUseCase(catalog repository.ProductRepository, movRepo repository.StockMovementRepository) *ExportUseCase {
	return &ExportUseCase{catalog: catalog, movRepo: movRepo}
}

// ExportMovements escribe en w los movimientos entre los días from y to (ambos inclusive).
// productID vacío exporta todos los productos. Devuelve la cantidad de filas escritas.
func (uc *ExportUseCase) ExportMovements(ctx context.Context, from, to time.Time, productID string, w io.Writer) (int, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 0, domain.ErrInvalidInput
	}
	start := inventory.StartOfDay(from)
	end := inventory.StartOfDay(to).AddDate(0, 0, 1)

	var (
		list []*entity.StockMovement
		err  error
	)
	if productID != "" {
		exists, err := uc.catalog.Exists(ctx, productID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, domain.ErrNotFound
		}
		list, err = uc.movRepo.ListByProductBetween(ctx, productID, start, end)
		if err != nil {
			return 0, err
		}
	} else {
		list, err = uc.movRepo.ListBetween(ctx, start, end)
		if err != nil {
			return 0, err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("export: escribir cabecera: %w", err)
	}
	for _, m := range list {
		price := ""
		if m.UnitPrice != nil {
			price = m.UnitPrice.StringFixed(2)
		}
		record := []string{
			m.ID, m.ProductID, string(m.Kind), string(m.Reason),
			strconv.FormatInt(m.Quantity, 10), strconv.FormatInt(m.SignedQuantity(), 10),
			price, m.Reference, m.Notes, m.OccurredAt.UTC().Format(time.RFC3339), m.CreatedBy,
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("export: escribir fila: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("export: flush: %w", err)
	}
	return len(list), nil
}
