package dto

// ErrorResponse cuerpo de error HTTP.
// Details lleva los contadores vigentes cuando falla una regla del libro de stock.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *StockDetails `json:"details,omitempty"`
}

// StockDetails contadores del registro al momento del rechazo.
type StockDetails struct {
	StockID   string `json:"stock_id,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available"`
	Leased    int    `json:"leased"`
	Total     int    `json:"total"`
}
