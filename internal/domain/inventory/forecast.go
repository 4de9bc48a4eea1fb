package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DefaultWindowDays ventana histórica fija del promedio móvil.
const DefaultWindowDays = 90

// StartOfDay trunca t a la medianoche UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HistoryWindow devuelve la ventana [start − windowDays, start) en días UTC.
func HistoryWindow(start time.Time, windowDays int) (from, to time.Time) {
	to = StartOfDay(start)
	return to.AddDate(0, 0, -windowDays), to
}

// CountsAsDemand indica si el movimiento es una venta. Ajustes, correcciones y mermas
// cambian el stock pero no son demanda de clientes.
func CountsAsDemand(m *entity.StockMovement) bool {
	return m.Kind == entity.MovementOut && m.Reason == entity.ReasonSale
}

// DemandTotal suma las cantidades vendidas de la lista.
func DemandTotal(movements []*entity.StockMovement) int64 {
	var total int64
	for _, m := range movements {
		if CountsAsDemand(m) {
			total += m.Quantity
		}
	}
	return total
}

// AverageDaily = total / windowDays redondeado a 2 decimales.
// El divisor es la longitud de la ventana, no los días con ventas.
func AverageDaily(total int64, windowDays int) decimal.Decimal {
	if total <= 0 || windowDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(windowDays))).Round(2)
}

// FlatForecast genera un punto por día en [start, start+days) con el mismo valor.
func FlatForecast(start time.Time, days int, avg decimal.Decimal) []entity.DemandPoint {
	day := StartOfDay(start)
	points := make([]entity.DemandPoint, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, entity.DemandPoint{
			Date:              day.AddDate(0, 0, i),
			PredictedQuantity: avg,
		})
	}
	return points
}

// DaysOfCover = stock / promedio diario, redondeado a 1 decimal. ok es false sin demanda.
func DaysOfCover(stock int64, avg decimal.Decimal) (decimal.Decimal, bool) {
	if !avg.IsPositive() {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(stock).Div(avg).Round(1), true
}
