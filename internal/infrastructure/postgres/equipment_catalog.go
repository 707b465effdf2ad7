package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

var _ repository.EquipmentCatalog = (*EquipmentCatalogRepo)(nil)

// EquipmentCatalogRepo lee la tabla equipment del servicio de catálogo (misma base de datos).
// El libro de stock solo la consulta; nunca la escribe.
type EquipmentCatalogRepo struct {
	q Querier
}

// NewEquipmentCatalogRepository construye el adaptador.
func NewEquipmentCatalogRepository(q Querier) *EquipmentCatalogRepo {
	return &EquipmentCatalogRepo{q: q}
}

// ListIDsByType devuelve los IDs de equipos del tipo indicado (sin distinguir mayúsculas).
func (r *EquipmentCatalogRepo) ListIDsByType(ctx context.Context, equipmentType string) ([]string, error) {
	query := `
		SELECT id::text
		FROM equipment
		WHERE lower(equipment_type) = lower($1)
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, equipmentType)
	if err != nil {
		return nil, fmt.Errorf("list equipment by type: %w", err)
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan equipment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
