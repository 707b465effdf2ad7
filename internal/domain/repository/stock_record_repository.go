package repository

import (
	"context"

	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
)

// SumField contador agregable en los reportes.
type SumField string

const (
	SumTotal     SumField = "total"
	SumAvailable SumField = "available"
	SumLeased    SumField = "leased"
)

// Valid indica si el campo es agregable.
func (f SumField) Valid() bool {
	switch f {
	case SumTotal, SumAvailable, SumLeased:
		return true
	}
	return false
}

// StockFilter filtros combinables (AND) del listado de inventario. Campos vacíos no filtran.
type StockFilter struct {
	Status       entity.StockStatus
	Location     string
	MinAvailable *int
	// EquipmentRefs restringe a esos equipos; un slice no nil y vacío no devuelve nada.
	EquipmentRefs []string
	// BelowMinimum selecciona available <= minimum (incluye agotados).
	BelowMinimum bool
}

// StockRecordRepository puerto de persistencia del libro de stock.
// Get* devuelven (nil, nil) cuando el registro no existe.
type StockRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockRecord, error)
	// GetForUpdate bloquea el registro hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error)
	GetByEquipment(ctx context.Context, equipmentRef string) (*entity.StockRecord, error)
	Create(ctx context.Context, rec *entity.StockRecord) error
	Update(ctx context.Context, rec *entity.StockRecord) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter StockFilter) ([]*entity.StockRecord, error)
	// Sum devuelve 0 cuando no hay registros.
	Sum(ctx context.Context, field SumField) (int64, error)
}

// EquipmentCatalog consulta el catálogo de equipos (servicio externo).
type EquipmentCatalog interface {
	ListIDsByType(ctx context.Context, equipmentType string) ([]string, error)
}
