package dto

import "time"

// CreateStockRequest body para POST /api/stock.
// Un equipo nuevo en la flota suele llegar con available == total y leased == 0.
type CreateStockRequest struct {
	EquipmentID string `json:"equipment_id" validate:"required,max=64"`
	Available   int    `json:"available"`
	Minimum     int    `json:"minimum"`
	Total       int    `json:"total"`
	Leased      int    `json:"leased"`
	Location    string `json:"location" validate:"required,max=255"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// ReplaceStockRequest body para PUT /api/stock/{id} (reemplazo administrativo completo).
type ReplaceStockRequest struct {
	Available int    `json:"available"`
	Minimum   int    `json:"minimum"`
	Total     int    `json:"total"`
	Leased    int    `json:"leased"`
	Location  string `json:"location" validate:"required,max=255"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// StockResponse representación de un registro de inventario.
type StockResponse struct {
	ID          string    `json:"id"`
	EquipmentID string    `json:"equipment_id"`
	Available   int       `json:"available"`
	Minimum     int       `json:"minimum"`
	Total       int       `json:"total"`
	Leased      int       `json:"leased"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	LastUpdated time.Time `json:"last_updated"`
}

// StockListResponse listado de inventario.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Total int             `json:"total"`
}

// StockQuery filtros de GET /api/stock. Vacíos no filtran.
type StockQuery struct {
	Status        string
	Location      string
	EquipmentType string
	MinAvailable  *int
}

// AvailabilityResponse resultado de GET /api/stock/availability/{equipmentId}.
type AvailabilityResponse struct {
	EquipmentID string `json:"equipment_id"`
	Quantity    int    `json:"quantity"`
	Available   bool   `json:"available"`
}

// StockTotalResponse resultado de GET /api/stock/reports/{kind}.
type StockTotalResponse struct {
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}
