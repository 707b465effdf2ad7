package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una unidad atómica con un repositorio atado a ella.
// Los registros leídos con GetForUpdate quedan bloqueados hasta Commit o Rollback;
// una espera de bloqueo acotada termina en domain.ErrContention.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.StockRecordRepository) error) error
}

// StockReport datos del reporte resumen de inventario.
type StockReport struct {
	GeneratedAt time.Time
	Records     []*entity.StockRecord
	Total       int64
	Available   int64
	Leased      int64
}

// ReportGenerator genera la representación imprimible (PDF) del reporte.
type ReportGenerator interface {
	GenerateStockReport(ctx context.Context, report StockReport) ([]byte, error)
}
