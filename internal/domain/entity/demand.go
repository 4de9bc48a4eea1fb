package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DemandBasis origen del pronóstico.
type DemandBasis string

const (
	DemandBasisHistorical DemandBasis = "HISTORICAL_AVERAGE"
	DemandBasisNoData     DemandBasis = "NO_HISTORICAL_DATA"
)

// ModelVersionNoData versión reportada cuando la ventana no tiene ventas.
const ModelVersionNoData = "average_daily_sales_v1.0_no_historical_data"

// ModelVersionForWindow versión del promedio móvil para una ventana de days días.
func ModelVersionForWindow(days int) string {
	return fmt.Sprintf("average_daily_sales_v1.0_%dday_window", days)
}

// DemandPoint cantidad pronosticada para un día.
type DemandPoint struct {
	Date              time.Time
	PredictedQuantity decimal.Decimal
}

// DemandEstimate pronóstico efímero (no se persiste).
type DemandEstimate struct {
	ProductID            string
	WindowStart          time.Time // inclusivo
	WindowEnd            time.Time // exclusivo
	TotalHistorical      int64
	AverageDailyQuantity decimal.Decimal
	Basis                DemandBasis
	ModelVersion         string
	Points               []DemandPoint
	GeneratedAt          time.Time
}
