package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/equipment-ledger/internal/domain"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockColumns = `id, equipment_id, available, minimum, total, leased, location, status, notes, last_updated`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func (r *StockRecordRepo) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE id = $1`
	return r.getOne(ctx, "get stock record", query, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción; con lock_timeout vencido
// PostgreSQL responde 55P03 y se devuelve domain.ErrContention.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "get stock record for update", query, id)
}

func (r *StockRecordRepo) GetByEquipment(ctx context.Context, equipmentRef string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE equipment_id = $1`
	return r.getOne(ctx, "get stock record by equipment", query, equipmentRef)
}

func (r *StockRecordRepo) Create(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.EquipmentRef, rec.Available, rec.Minimum, rec.Total, rec.Leased,
		rec.Location, string(rec.Status), rec.Notes, rec.LastUpdated,
	)
	if err != nil {
		return classify(fmt.Errorf("create stock record: %w", err))
	}
	return nil
}

func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET equipment_id = $2, available = $3, minimum = $4, total = $5, leased = $6,
		    location = $7, status = $8, notes = $9, last_updated = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		rec.ID, rec.EquipmentRef, rec.Available, rec.Minimum, rec.Total, rec.Leased,
		rec.Location, string(rec.Status), rec.Notes, rec.LastUpdated,
	)
	if err != nil {
		return classify(fmt.Errorf("update stock record: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockRecordRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_records WHERE id = $1`, id)
	if err != nil {
		return classify(fmt.Errorf("delete stock record: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockRecordRepo) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockRecord, error) {
	query, args := buildListQuery(filter)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list stock records: %w", err))
	}
	defer rows.Close()

	list := make([]*entity.StockRecord, 0)
	for rows.Next() {
		rec, err := scanStockRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *StockRecordRepo) Sum(ctx context.Context, field repository.SumField) (int64, error) {
	column, ok := sumColumn(field)
	if !ok {
		return 0, domain.ErrInvalidInput
	}
	query := `SELECT COALESCE(SUM(` + column + `), 0)::BIGINT FROM stock_records`
	var total int64
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, classify(fmt.Errorf("sum stock %s: %w", column, err))
	}
	return total, nil
}

func (r *StockRecordRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.StockRecord, error) {
	rec, err := scanStockRecord(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(fmt.Errorf("%s: %w", op, err))
	}
	return rec, nil
}

func scanStockRecord(row pgx.Row) (*entity.StockRecord, error) {
	var (
		rec    entity.StockRecord
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.EquipmentRef, &rec.Available, &rec.Minimum, &rec.Total, &rec.Leased,
		&rec.Location, &status, &rec.Notes, &rec.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = entity.StockStatus(status)
	return &rec, nil
}

// sumColumn lista blanca de columnas agregables (se interpolan en el SQL).
func sumColumn(field repository.SumField) (string, bool) {
	switch field {
	case repository.SumTotal:
		return "total", true
	case repository.SumAvailable:
		return "available", true
	case repository.SumLeased:
		return "leased", true
	}
	return "", false
}

// buildListQuery arma el SELECT filtrado. Los filtros se combinan con AND.
func buildListQuery(filter repository.StockFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Location != "" {
		add("lower(location) = lower($%d)", filter.Location)
	}
	if filter.MinAvailable != nil {
		add("available >= $%d", *filter.MinAvailable)
	}
	if filter.EquipmentRefs != nil {
		add("equipment_id = ANY($%d)", filter.EquipmentRefs)
	}
	if filter.BelowMinimum {
		conds = append(conds, "available <= minimum")
	}

	query := `SELECT ` + stockColumns + ` FROM stock_records`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY last_updated DESC, id`
	return query, args
}
