// Package ledger contiene la lógica pura del libro de stock de equipos:
// arriendo, devolución, reposición y reemplazo administrativo de contadores.
// No conoce la persistencia; el caso de uso carga el registro bajo bloqueo,
// aplica la operación y persiste en la misma unidad atómica.
package ledger

import (
	"math"
	"time"

	"github.com/jhoicas/equipment-ledger/internal/domain"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
)

// Counters valores completos para un reemplazo administrativo.
type Counters struct {
	Available int
	Minimum   int
	Total     int
	Leased    int
}

// Validate revisa no negatividad y total == disponible + arrendado.
func (c Counters) Validate() error {
	if c.Available < 0 || c.Minimum < 0 || c.Total < 0 || c.Leased < 0 ||
		c.Total != c.Available+c.Leased {
		return &domain.LedgerError{
			Kind:      domain.ErrInvariantViolation,
			Available: c.Available,
			Leased:    c.Leased,
			Total:     c.Total,
		}
	}
	return nil
}

// Replenish suma unidades nuevas a disponible y total.
func Replenish(rec *entity.StockRecord, qty PositiveQuantity, now time.Time) error {
	n := qty.Int()
	if rec.Available > math.MaxInt-n || rec.Total > math.MaxInt-n {
		return domain.ErrInvalidQuantity
	}
	rec.Available += n
	rec.Total += n
	rec.Touch(now)
	return nil
}

// Lease mueve unidades de disponible a arrendado. El total no cambia.
func Lease(rec *entity.StockRecord, qty PositiveQuantity, now time.Time) error {
	n := qty.Int()
	if n > rec.Available {
		return violation(domain.ErrInsufficientStock, rec, n)
	}
	rec.Available -= n
	rec.Leased += n
	rec.Touch(now)
	return nil
}

// Return mueve unidades de arrendado a disponible; rechaza devolver más de lo arrendado.
func Return(rec *entity.StockRecord, qty PositiveQuantity, now time.Time) error {
	n := qty.Int()
	if n > rec.Leased {
		return violation(domain.ErrOverReturn, rec, n)
	}
	rec.Available += n
	rec.Leased -= n
	rec.Touch(now)
	return nil
}

// Replace sobreescribe contadores, ubicación y observaciones tras validar la invariante.
func Replace(rec *entity.StockRecord, c Counters, location, notes string, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	rec.Available = c.Available
	rec.Minimum = c.Minimum
	rec.Total = c.Total
	rec.Leased = c.Leased
	rec.Location = location
	rec.Notes = notes
	rec.Touch(now)
	return nil
}

// CanDelete solo permite dar de baja un registro sin equipos arrendados.
func CanDelete(rec *entity.StockRecord) error {
	if rec.Leased > 0 {
		return violation(domain.ErrHasActiveLease, rec, 0)
	}
	return nil
}

// HasAvailable indica si hay al menos qty unidades libres.
func HasAvailable(rec *entity.StockRecord, qty PositiveQuantity) bool {
	return rec != nil && rec.Available >= qty.Int()
}

func violation(kind error, rec *entity.StockRecord, requested int) *domain.LedgerError {
	return &domain.LedgerError{
		Kind:      kind,
		StockID:   rec.ID,
		Requested: requested,
		Available: rec.Available,
		Leased:    rec.Leased,
		Total:     rec.Total,
	}
}
