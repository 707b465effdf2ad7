package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/equipment-ledger/internal/domain"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"lock_timeout", &pgconn.PgError{Code: codeLockNotAvailable}, domain.ErrContention},
		{"serialización", &pgconn.PgError{Code: codeSerializationFailure}, domain.ErrContention},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, domain.ErrContention},
		{"statement_timeout", &pgconn.PgError{Code: codeQueryCanceled}, domain.ErrContention},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), domain.ErrContention},
		{"único", fmt.Errorf("create: %w", &pgconn.PgError{Code: codeUniqueViolation}), domain.ErrDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}

	other := errors.New("conexión rechazada")
	assert.Equal(t, other, classify(other))
	assert.NoError(t, classify(nil))
}

func TestLockTimeoutStatement(t *testing.T) {
	assert.Equal(t, "", lockTimeoutStatement(0))
	assert.Equal(t, "SET LOCAL lock_timeout = 2000", lockTimeoutStatement(2*time.Second))
	assert.Equal(t, "SET LOCAL lock_timeout = 1", lockTimeoutStatement(time.Microsecond))
}

func TestBuildListQuery(t *testing.T) {
	q, args := buildListQuery(repository.StockFilter{})
	assert.Equal(t, `SELECT `+stockColumns+` FROM stock_records ORDER BY last_updated DESC, id`, q)
	assert.Empty(t, args)

	minAvail := 3
	q, args = buildListQuery(repository.StockFilter{
		Status:        entity.StatusCritical,
		Location:      "Bodega A",
		MinAvailable:  &minAvail,
		EquipmentRefs: []string{"andamio-01"},
		BelowMinimum:  true,
	})
	assert.Contains(t, q, "WHERE status = $1 AND lower(location) = lower($2) AND available >= $3 AND equipment_id = ANY($4) AND available <= minimum")
	assert.Equal(t, []any{"CRITICAL", "Bodega A", 3, []string{"andamio-01"}}, args)
}

func TestSumColumn(t *testing.T) {
	for _, f := range []repository.SumField{repository.SumTotal, repository.SumAvailable, repository.SumLeased} {
		col, ok := sumColumn(f)
		assert.True(t, ok)
		assert.Equal(t, string(f), col)
	}
	_, ok := sumColumn("minimum; DROP TABLE stock_records")
	assert.False(t, ok)
}
