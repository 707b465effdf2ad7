package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appledger "github.com/jhoicas/equipment-ledger/internal/application/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con lock_timeout acotado.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout <= 0 deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con el repositorio atado a la tx y hace Commit o Rollback.
// Una espera de bloqueo que vence, un conflicto de serialización o un deadlock se devuelven
// como domain.ErrContention.
func (r *TxRunner) Run(ctx context.Context, fn func(repo repository.StockRecordRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if stmt := lockTimeoutStatement(r.lockTimeout); stmt != "" {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return classify(fmt.Errorf("set lock_timeout: %w", err))
		}
	}

	if err := fn(NewStockRecordRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// lockTimeoutStatement no admite parámetros ($1) en SET; el valor es un entero propio.
func lockTimeoutStatement(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = %d", ms)
}
