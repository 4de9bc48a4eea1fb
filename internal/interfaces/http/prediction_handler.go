package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// PredictionHandler expone el estimador de demanda y la cobertura de stock.
type PredictionHandler struct {
	demand        *inventory.DemandUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewPredictionHandler construye el handler.
func NewPredictionHandler(demand *inventory.DemandUseCase, replenishment *inventory.ReplenishmentUseCase) *PredictionHandler {
	return &PredictionHandler{demand: demand, replenishment: replenishment}
}

// PredictDemand godoc
// @Summary      Estimar demanda diaria
// @Description  Promedio diario de ventas en los días previos a start_date, proyectado
//
//	de forma plana sobre los días pedidos.
//
// @Tags         predictions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DemandRequest  true  "product_id, start_date (YYYY-MM-DD, hoy o futura), days 1..366"
// @Success      200   {object}  dto.DemandResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/predictions/demand [post]
func (h *PredictionHandler) PredictDemand(c *fiber.Ctx) error {
	var in dto.DemandRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	start, err := time.Parse(dto.DateLayout, in.StartDate)
	if err != nil {
		return badRequest(c, "start_date debe tener formato YYYY-MM-DD")
	}
	if in.Days < 1 || in.Days > dto.MaxForecastDays {
		return badRequest(c, fmt.Sprintf("days debe estar entre 1 y %d", dto.MaxForecastDays))
	}
	estimate, err := h.demand.PredictDemand(c.UserContext(), in.ProductID, start, in.Days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DemandFromEntity(estimate))
}

// Cover godoc
// @Summary      Días de cobertura del stock actual
// @Tags         predictions
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200   {object}  dto.CoverResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/predictions/cover/{productId} [get]
func (h *PredictionHandler) Cover(c *fiber.Ctx) error {
	cover, err := h.replenishment.EstimateCover(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CoverFromEstimate(cover))
}
