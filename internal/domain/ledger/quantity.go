package ledger

import "github.com/jhoicas/equipment-ledger/internal/domain"

// PositiveQuantity cantidad de unidades ya validada (> 0).
type PositiveQuantity struct {
	n int
}

// NewPositiveQuantity valida la cantidad recibida en el borde de la aplicación.
func NewPositiveQuantity(n int) (PositiveQuantity, error) {
	if n <= 0 {
		return PositiveQuantity{}, domain.ErrInvalidQuantity
	}
	return PositiveQuantity{n: n}, nil
}

// Int devuelve el valor entero.
func (q PositiveQuantity) Int() int { return q.n }
