package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/equipment-ledger/internal/application/dto"
	"github.com/jhoicas/equipment-ledger/internal/domain"
)

// writeError traduce errores de dominio a status HTTP y dto.ErrorResponse.
// Las reglas del libro de stock devuelven los contadores vigentes en details.
func writeError(c *fiber.Ctx, err error) error {
	var details *dto.StockDetails
	message := err.Error()
	var lerr *domain.LedgerError
	if errors.As(err, &lerr) {
		details = &dto.StockDetails{
			StockID:   lerr.StockID,
			Requested: lerr.Requested,
			Available: lerr.Available,
			Leased:    lerr.Leased,
			Total:     lerr.Total,
		}
		message = lerr.Error()
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = fiber.StatusNotFound, "NOT_FOUND", domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code, message = fiber.StatusBadRequest, "INVALID_QUANTITY", domain.ErrInvalidQuantity.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusBadRequest, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrOverReturn):
		status, code = fiber.StatusBadRequest, "OVER_RETURN"
	case errors.Is(err, domain.ErrInvariantViolation):
		status, code = fiber.StatusBadRequest, "INVARIANT_VIOLATION"
	case errors.Is(err, domain.ErrHasActiveLease):
		status, code = fiber.StatusBadRequest, "HAS_ACTIVE_LEASE"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrDuplicate):
		status, code, message = fiber.StatusConflict, "DUPLICATE", domain.ErrDuplicate.Error()
	case errors.Is(err, domain.ErrContention):
		c.Set(fiber.HeaderRetryAfter, "1")
		status, code, message = fiber.StatusServiceUnavailable, "CONTENTION", domain.ErrContention.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message, Details: details})
}
