package http

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/equipment-ledger/internal/application/dto"
	"github.com/jhoicas/equipment-ledger/internal/application/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain"
)

// StockHandler maneja las peticiones HTTP del libro de stock de equipos.
type StockHandler struct {
	uc    *ledger.UseCase
	query *ledger.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.UseCase, query *ledger.QueryUseCase) *StockHandler {
	return &StockHandler{uc: uc, query: query}
}

// Create godoc
// @Summary      Crear inventario de un equipo
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "equipment_id, contadores, location, notes"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateBody(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener inventario por ID
// @Tags         stock
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByEquipment godoc
// @Summary      Obtener inventario de un equipo
// @Tags         stock
// @Produce      json
// @Param        equipmentId  path  string  true  "ID del equipo"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/equipment/{equipmentId} [get]
func (h *StockHandler) GetByEquipment(c *fiber.Ctx) error {
	out, err := h.uc.GetByEquipment(c.UserContext(), c.Params("equipmentId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar inventario
// @Description  Filtros combinables; vacíos no filtran.
// @Tags         stock
// @Produce      json
// @Param        status         query  string  false  "AVAILABLE | CRITICAL | DEPLETED"
// @Param        location       query  string  false  "Ubicación exacta (sin distinguir mayúsculas)"
// @Param        equipmentType  query  string  false  "Tipo de equipo del catálogo"
// @Param        minAvailable   query  int     false  "Disponible mínimo"
// @Success      200  {object}  dto.StockListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	q := dto.StockQuery{
		Status:        c.Query("status"),
		Location:      c.Query("location"),
		EquipmentType: c.Query("equipmentType"),
	}
	if raw := strings.TrimSpace(c.Query("minAvailable")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "minAvailable debe ser un entero"})
		}
		q.MinAvailable = &n
	}
	out, err := h.query.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Critical godoc
// @Summary      Inventario en o bajo el stock mínimo (incluye agotados)
// @Tags         stock
// @Produce      json
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock/critical [get]
func (h *StockHandler) Critical(c *fiber.Ctx) error {
	out, err := h.query.Critical(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Depleted godoc
// @Summary      Inventario agotado
// @Tags         stock
// @Produce      json
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock/depleted [get]
func (h *StockHandler) Depleted(c *fiber.Ctx) error {
	out, err := h.query.Depleted(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replace godoc
// @Summary      Reemplazo administrativo del registro
// @Description  Valida total == available + leased y no negatividad antes de confirmar.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del registro"
// @Param        body  body  dto.ReplaceStockRequest  true  "Contadores, location, notes"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [put]
func (h *StockHandler) Replace(c *fiber.Ctx) error {
	var in dto.ReplaceStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validateBody(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.uc.Replace(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Dar de baja inventario
// @Tags         stock
// @Param        id   path  string  true  "ID del registro"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [delete]
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Lease godoc
// @Summary      Arrendar unidades
// @Tags         stock
// @Produce      json
// @Param        id   path   string  true  "ID del registro"
// @Param        qty  query  int     true  "Cantidad (> 0)"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/lease [put]
func (h *StockHandler) Lease(c *fiber.Ctx) error {
	return h.mutation(c, h.uc.Lease)
}

// Return godoc
// @Summary      Registrar devolución de unidades arrendadas
// @Tags         stock
// @Produce      json
// @Param        id   path   string  true  "ID del registro"
// @Param        qty  query  int     true  "Cantidad (> 0, <= leased)"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/return [put]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	return h.mutation(c, h.uc.Return)
}

// Replenish godoc
// @Summary      Reponer unidades nuevas
// @Tags         stock
// @Produce      json
// @Param        id   path   string  true  "ID del registro"
// @Param        qty  query  int     true  "Cantidad (> 0)"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/replenish [put]
func (h *StockHandler) Replenish(c *fiber.Ctx) error {
	return h.mutation(c, h.uc.Replenish)
}

// CheckAvailability godoc
// @Summary      Verificar disponibilidad de un equipo
// @Tags         stock
// @Produce      json
// @Param        equipmentId  path   string  true  "ID del equipo"
// @Param        qty          query  int     true  "Cantidad requerida (> 0)"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/availability/{equipmentId} [get]
func (h *StockHandler) CheckAvailability(c *fiber.Ctx) error {
	equipmentID := c.Params("equipmentId")
	qty, ok := parseQty(c)
	if !ok {
		return writeError(c, domain.ErrInvalidQuantity)
	}
	available, err := h.uc.CheckAvailability(c.UserContext(), equipmentID, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{EquipmentID: equipmentID, Quantity: qty, Available: available})
}

// Total godoc
// @Summary      Sumatoria de contadores
// @Tags         stock
// @Produce      json
// @Param        kind  path  string  true  "total | available | leased"
// @Success      200  {object}  dto.StockTotalResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/reports/{kind} [get]
func (h *StockHandler) Total(c *fiber.Ctx) error {
	out, err := h.query.Total(c.UserContext(), c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReportPDF godoc
// @Summary      Reporte PDF de inventario
// @Tags         stock
// @Produce      application/pdf
// @Success      200
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/reports/pdf [get]
func (h *StockHandler) ReportPDF(c *fiber.Ctx) error {
	doc, err := h.query.Report(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-report.pdf"`)
	return c.Send(doc)
}

func (h *StockHandler) mutation(c *fiber.Ctx, op func(ctx context.Context, id string, qty int) (*dto.StockResponse, error)) error {
	qty, ok := parseQty(c)
	if !ok {
		return writeError(c, domain.ErrInvalidQuantity)
	}
	out, err := op(c.UserContext(), c.Params("id"), qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// parseQty lee ?qty=; ausente o no entero no es válido.
func parseQty(c *fiber.Ctx) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query("qty")))
	if err != nil {
		return 0, false
	}
	return n, true
}
