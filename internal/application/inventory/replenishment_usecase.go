package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// CoverEstimate días de cobertura del stock actual al ritmo de demanda estimado.
type CoverEstimate struct {
	ProductID            string
	ProductName          string
	CurrentStock         int64
	AverageDailyQuantity decimal.Decimal
	// DaysOfCover es nil cuando no hay demanda histórica (cobertura indefinida).
	DaysOfCover *decimal.Decimal
}

// ReplenishmentUseCase combina el stock del libro mayor con el estimador de demanda.
type ReplenishmentUseCase struct {
	ledger *LedgerUseCase
	demand *DemandUseCase
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(ledger *LedgerUseCase, demand *DemandUseCase) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{ledger: ledger, demand: demand}
}

// EstimateCover devuelve cuántos días alcanza el stock actual con la demanda promedio desde hoy.
func (uc *ReplenishmentUseCase) EstimateCover(ctx context.Context, productID string) (*CoverEstimate, error) {
	stock, err := uc.ledger.GetCurrentStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	estimate, err := uc.demand.PredictDemand(ctx, productID, uc.demand.now(), 1)
	if err != nil {
		return nil, err
	}
	out := &CoverEstimate{
		ProductID:            productID,
		ProductName:          stock.ProductName,
		CurrentStock:         stock.Quantity,
		AverageDailyQuantity: estimate.AverageDailyQuantity,
	}
	if days, ok := inventory.DaysOfCover(stock.Quantity, estimate.AverageDailyQuantity); ok {
		out.DaysOfCover = &days
	}
	return out, nil
}
