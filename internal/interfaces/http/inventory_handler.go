package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y stock (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	kardex *inventory.KardexUseCase
	export *inventory.ExportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, kardex *inventory.KardexUseCase, export *inventory.ExportUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, kardex: kardex, export: export}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, kind (IN/OUT), quantity > 0"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	kind, ok := entity.ParseMovementKind(in.Kind)
	if !ok {
		return badRequest(c, "kind debe ser IN u OUT")
	}
	mov, err := h.ledger.RecordMovement(c.UserContext(), inventory.MovementInputDTO{
		ProductID:  in.ProductID,
		UserID:     GetUserID(c),
		Kind:       kind,
		Reason:     entity.MovementReason(in.Reason),
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		Reference:  in.Reference,
		Notes:      in.Notes,
		OccurredAt: in.Timestamp,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// RecordSale godoc
// @Summary      Registrar venta (salida con precio unitario)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "product_id, quantity > 0, unit_price > 0"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.RecordSale(c.UserContext(), inventory.SaleInputDTO{
		ProductID: in.ProductID,
		UserID:    GetUserID(c),
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// SetStock godoc
// @Summary      Fijar el stock de un producto (registra un ajuste por la diferencia)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string               true  "ID del producto"
// @Param        body       body  dto.SetStockRequest  true  "quantity >= 0"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{productId} [put]
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Quantity == nil {
		return badRequest(c, "quantity es obligatorio")
	}
	stock, err := h.ledger.SetStock(c.UserContext(), c.Params("productId"), *in.Quantity, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockFromEntity(stock))
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	stock, err := h.ledger.GetCurrentStock(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockFromEntity(stock))
}

// ListMovements godoc
// @Summary      Movimientos de un producto en orden cronológico
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200   {object}  dto.MovementListResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{productId}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID := c.Params("productId")
	list, err := h.ledger.GetMovementsForProduct(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListFromEntities(productID, list))
}

// KardexPDF godoc
// @Summary      Tarjeta de stock (kardex) en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        productId  path  string  true  "ID del producto"
// @Success      200
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{productId}/kardex.pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	productID := c.Params("productId")
	doc, err := h.kardex.RenderPDF(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s.pdf"`, productID))
	return c.Send(doc)
}

// ExportMovements godoc
// @Summary      Exportar movimientos en CSV
// @Tags         inventory
// @Security     Bearer
// @Produce      text/csv
// @Param        from        query  string  true   "Desde (YYYY-MM-DD, inclusive)"
// @Param        to          query  string  true   "Hasta (YYYY-MM-DD, inclusive)"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Success      200
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/export [get]
func (h *InventoryHandler) ExportMovements(c *fiber.Ctx) error {
	from, err := time.Parse(dto.DateLayout, c.Query("from"))
	if err != nil {
		return badRequest(c, "from debe tener formato YYYY-MM-DD")
	}
	to, err := time.Parse(dto.DateLayout, c.Query("to"))
	if err != nil {
		return badRequest(c, "to debe tener formato YYYY-MM-DD")
	}
	var buf bytes.Buffer
	if _, err := h.export.ExportMovements(c.UserContext(), from, to, c.Query("product_id"), &buf); err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="movimientos_%s_%s.csv"`,
		from.Format(dto.DateLayout), to.Format(dto.DateLayout)))
	return c.Send(buf.Bytes())
}
