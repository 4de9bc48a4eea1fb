package dto

import (
	"time"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MaxForecastDays tope de días por predicción aceptado por la API.
const MaxForecastDays = 366

// DemandRequest body para POST /api/predictions/demand. StartDate en formato YYYY-MM-DD.
type DemandRequest struct {
	ProductID string `json:"product_id"`
	StartDate string `json:"start_date"`
	Days      int    `json:"days"`
}

// DemandPointResponse cantidad prevista para un día.
type DemandPointResponse struct {
	Date              string          `json:"date"`
	PredictedQuantity decimal.Decimal `json:"predicted_quantity"`
}

// DemandResponse estimación de demanda.
type DemandResponse struct {
	ProductID            string                `json:"product_id"`
	WindowStart          string                `json:"window_start"`
	WindowEnd            string                `json:"window_end"`
	TotalHistorical      int64                 `json:"total_historical"`
	AverageDailyQuantity decimal.Decimal       `json:"average_daily_quantity"`
	Basis                string                `json:"basis"`
	ModelVersion         string                `json:"model_version"`
	GeneratedAt          time.Time             `json:"generated_at"`
	Predictions          []DemandPointResponse `json:"predictions"`
}

// CoverResponse días de cobertura del stock actual. DaysOfCover es null si no hay demanda histórica.
type CoverResponse struct {
	ProductID            string           `json:"product_id"`
	ProductName          string           `json:"product_name"`
	CurrentStock         int64            `json:"current_stock"`
	AverageDailyQuantity decimal.Decimal  `json:"average_daily_quantity"`
	DaysOfCover          *decimal.Decimal `json:"days_of_cover"`
}

// DemandFromEntity mapea la estimación a su respuesta.
func DemandFromEntity(e *entity.DemandEstimate) DemandResponse {
	out := DemandResponse{
		ProductID:            e.ProductID,
		WindowStart:          e.WindowStart.Format(DateLayout),
		WindowEnd:            e.WindowEnd.Format(DateLayout),
		TotalHistorical:      e.TotalHistorical,
		AverageDailyQuantity: e.AverageDailyQuantity,
		Basis:                string(e.Basis),
		ModelVersion:         e.ModelVersion,
		GeneratedAt:          e.GeneratedAt,
		Predictions:          make([]DemandPointResponse, 0, len(e.Points)),
	}
	for _, p := range e.Points {
		out.Predictions = append(out.Predictions, DemandPointResponse{
			Date:              p.Date.Format(DateLayout),
			PredictedQuantity: p.PredictedQuantity,
		})
	}
	return out
}

// CoverFromEstimate mapea la cobertura a su respuesta.
func CoverFromEstimate(c *appinventory.CoverEstimate) CoverResponse {
	return CoverResponse{
		ProductID:            c.ProductID,
		ProductName:          c.ProductName,
		CurrentStock:         c.CurrentStock,
		AverageDailyQuantity: c.AverageDailyQuantity,
		DaysOfCover:          c.DaysOfCover,
	}
}
