package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

var _ repository.EquipmentCatalog = (*EquipmentCatalog)(nil)

// EquipmentCatalog catálogo de equipos en memoria (equipo → tipo), para STORE_DRIVER=memory y tests.
type EquipmentCatalog struct {
	mu    sync.RWMutex
	types map[string]string
}

// NewEquipmentCatalog construye un catálogo vacío.
func NewEquipmentCatalog() *EquipmentCatalog {
	return &EquipmentCatalog{types: make(map[string]string)}
}

// Register asocia un equipo a su tipo, reemplazando el anterior.
func (c *EquipmentCatalog) Register(equipmentID, equipmentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[equipmentID] = equipmentType
}

// ListIDsByType compara el tipo sin distinguir mayúsculas.
func (c *EquipmentCatalog) ListIDsByType(_ context.Context, equipmentType string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0)
	for id, t := range c.types {
		if strings.EqualFold(t, equipmentType) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
