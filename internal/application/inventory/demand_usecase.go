package inventory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DemandUseCase estima la demanda futura a partir de las ventas históricas (solo lectura).
// El modelo es un promedio móvil plano; se puede reemplazar sin cambiar el contrato.
type DemandUseCase struct {
	catalog    repository.ProductRepository
	movRepo    repository.StockMovementRepository
	windowDays int
	tracer     trace.Tracer
	now        func() time.Time
}

// NewDemandUseCase construye el estimador. windowDays <= 0 usa la ventana de 90 días.
func NewDemandUseCase(
	catalog repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	windowDays int,
	clock func() time.Time,
) *DemandUseCase {
	if windowDays <= 0 {
		windowDays = inventory.DefaultWindowDays
	}
	if clock == nil {
		clock = time.Now
	}
	return &DemandUseCase{
		catalog:    catalog,
		movRepo:    movRepo,
		windowDays: windowDays,
		tracer:     otel.Tracer(tracerName),
		now:        clock,
	}
}

// PredictDemand devuelve un punto por día en [startDate, startDate+days) con el promedio diario
// de ventas (salidas con motivo SALE) de la ventana [startDate − windowDays, startDate).
// startDate debe ser hoy o posterior y days >= 1 (ErrInvalidInput); producto desconocido → ErrNotFound.
func (uc *DemandUseCase) PredictDemand(ctx context.Context, productID string, startDate time.Time, days int) (*entity.DemandEstimate, error) {
	ctx, span := uc.tracer.Start(ctx, "demand.predict", trace.WithAttributes(
		attribute.String("product_id", productID),
		attribute.Int("days", days),
	))
	defer span.End()

	if productID == "" || days < 1 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	start := inventory.StartOfDay(startDate)
	if start.Before(inventory.StartOfDay(now)) {
		return nil, fmt.Errorf("%w: la fecha de inicio no puede ser pasada", domain.ErrInvalidInput)
	}
	exists, err := uc.catalog.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	from, to := inventory.HistoryWindow(start, uc.windowDays)
	history, err := uc.movRepo.ListByProductBetween(ctx, productID, from, to)
	if err != nil {
		return nil, err
	}
	total := inventory.DemandTotal(history)
	avg := inventory.AverageDaily(total, uc.windowDays)

	estimate := &entity.DemandEstimate{
		ProductID:            productID,
		WindowStart:          from,
		WindowEnd:            to,
		TotalHistorical:      total,
		AverageDailyQuantity: avg,
		Basis:                entity.DemandBasisHistorical,
		ModelVersion:         entity.ModelVersionForWindow(uc.windowDays),
		Points:               inventory.FlatForecast(start, days, avg),
		GeneratedAt:          now,
	}
	if total == 0 {
		estimate.Basis = entity.DemandBasisNoData
		estimate.ModelVersion = entity.ModelVersionNoData
	}
	span.SetAttributes(attribute.Int64("total_historical", total))
	return estimate, nil
}
