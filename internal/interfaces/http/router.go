package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerUseCase
	Demand        *inventory.DemandUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Kardex        *inventory.KardexUseCase
	Export        *inventory.ExportUseCase
	JWTSecret     string
	JWTIssuer     string
}

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Kardex, deps.Export)
	inv.Post("/movements", inventoryHandler.RecordMovement)
	inv.Post("/sales", inventoryHandler.RecordSale)
	inv.Get("/stock/:productId", inventoryHandler.GetStock)
	inv.Put("/stock/:productId", RequireRole(RoleAdmin, RoleBodeguero), inventoryHandler.SetStock)
	inv.Get("/products/:productId/movements", inventoryHandler.ListMovements)
	inv.Get("/products/:productId/kardex.pdf", inventoryHandler.KardexPDF)
	inv.Get("/export", inventoryHandler.ExportMovements)

	predictions := api.Group("/predictions")
	predictionHandler := NewPredictionHandler(deps.Demand, deps.Replenishment)
	predictions.Post("/demand", predictionHandler.PredictDemand)
	predictions.Get("/cover/:productId", predictionHandler.Cover)
}
