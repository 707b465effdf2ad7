package entity

import "time"

// StockStatus estado derivado del inventario de un equipo.
type StockStatus string

const (
	StatusAvailable StockStatus = "AVAILABLE"
	StatusCritical  StockStatus = "CRITICAL"
	StatusDepleted  StockStatus = "DEPLETED"
)

// Valid indica si el valor es uno de los estados conocidos.
func (s StockStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusCritical, StatusDepleted:
		return true
	}
	return false
}

// DeriveStatus calcula el estado a partir del disponible y el mínimo.
// available == minimum se considera CRITICAL.
func DeriveStatus(available, minimum int) StockStatus {
	switch {
	case available <= 0:
		return StatusDepleted
	case available <= minimum:
		return StatusCritical
	default:
		return StatusAvailable
	}
}

// StockRecord es el libro de stock de un equipo (arrendado o propio).
// Se mantiene total == available + leased después de cada operación confirmada.
type StockRecord struct {
	ID           string
	EquipmentRef string
	Available    int
	Minimum      int
	Total        int
	Leased       int
	Location     string
	Status       StockStatus
	Notes        string
	LastUpdated  time.Time
}

// Consistent verifica la invariante de contadores.
func (r *StockRecord) Consistent() bool {
	return r.Available >= 0 && r.Leased >= 0 && r.Total >= 0 && r.Minimum >= 0 &&
		r.Total == r.Available+r.Leased
}

// Touch recalcula estado y fecha de actualización; último paso antes de persistir.
func (r *StockRecord) Touch(now time.Time) {
	r.Status = DeriveStatus(r.Available, r.Minimum)
	r.LastUpdated = now.UTC()
}
