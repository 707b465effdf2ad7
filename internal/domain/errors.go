package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("inventario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("ya existe inventario para el equipo")
	ErrInvalidQuantity    = errors.New("la cantidad debe ser mayor a cero")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOverReturn         = errors.New("la devolución excede el stock arrendado")
	ErrInvariantViolation = errors.New("total debe ser igual a disponible + arrendado")
	ErrHasActiveLease     = errors.New("el inventario tiene equipos arrendados")
	ErrContention         = errors.New("registro bloqueado por otra operación, reintente")
)

// LedgerError acompaña una regla de negocio violada con los contadores vigentes del registro,
// para que el llamador decida si reintenta con otra cantidad.
type LedgerError struct {
	Kind      error
	StockID   string
	Requested int
	Available int
	Leased    int
	Total     int
}

func (e *LedgerError) Error() string {
	switch e.Kind {
	case ErrInsufficientStock:
		return fmt.Sprintf("%s. Disponible: %d", e.Kind, e.Available)
	case ErrOverReturn:
		return fmt.Sprintf("%s. Arrendado: %d", e.Kind, e.Leased)
	case ErrHasActiveLease:
		return fmt.Sprintf("%s. Arrendado: %d", e.Kind, e.Leased)
	case ErrInvariantViolation:
		return fmt.Sprintf("%s (disponible=%d, arrendado=%d, total=%d)", e.Kind, e.Available, e.Leased, e.Total)
	}
	return e.Kind.Error()
}

func (e *LedgerError) Unwrap() error { return e.Kind }
