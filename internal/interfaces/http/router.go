package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/equipment-ledger/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger *ledger.UseCase
	Query  *ledger.QueryUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stock := api.Group("/stock")
	h := NewStockHandler(deps.Ledger, deps.Query)

	stock.Post("/", h.Create)
	stock.Get("/", h.List)

	// Rutas estáticas antes de /:id
	stock.Get("/critical", h.Critical)
	stock.Get("/depleted", h.Depleted)
	stock.Get("/equipment/:equipmentId", h.GetByEquipment)
	stock.Get("/availability/:equipmentId", h.CheckAvailability)
	stock.Get("/reports/pdf", h.ReportPDF)
	stock.Get("/reports/:kind", h.Total)

	stock.Get("/:id", h.GetByID)
	stock.Put("/:id", h.Replace)
	stock.Delete("/:id", h.Delete)

	// Mutaciones del libro de stock
	stock.Put("/:id/lease", h.Lease)
	stock.Put("/:id/return", h.Return)
	stock.Put("/:id/replenish", h.Replenish)
}
