package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/equipment-ledger/internal/application/dto"
	"github.com/jhoicas/equipment-ledger/internal/domain"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
	"github.com/jhoicas/equipment-ledger/internal/domain/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
	"github.com/jhoicas/equipment-ledger/pkg/logger"
)

// UseCase operaciones del libro de stock: alta, arriendo, devolución, reposición,
// reemplazo administrativo, baja y verificación de disponibilidad.
// Cada mutación carga el registro con bloqueo de fila, aplica la regla y persiste en la misma tx.
type UseCase struct {
	txRunner TxRunner
	repo     repository.StockRecordRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. repo se usa para lecturas fuera de transacción.
func NewUseCase(txRunner TxRunner, repo repository.StockRecordRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner: txRunner,
		repo:     repo,
		log:      log.Named("ledger"),
		now:      time.Now,
	}
}

// Create registra el inventario de un equipo que entra a la flota.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateStockRequest) (*dto.StockResponse, error) {
	equipmentID := strings.TrimSpace(in.EquipmentID)
	location := strings.TrimSpace(in.Location)
	if equipmentID == "" || location == "" {
		return nil, domain.ErrInvalidInput
	}
	counters := ledger.Counters{Available: in.Available, Minimum: in.Minimum, Total: in.Total, Leased: in.Leased}
	if err := counters.Validate(); err != nil {
		return nil, err
	}

	rec := &entity.StockRecord{
		ID:           uuid.New().String(),
		EquipmentRef: equipmentID,
		Available:    in.Available,
		Minimum:      in.Minimum,
		Total:        in.Total,
		Leased:       in.Leased,
		Location:     location,
		Notes:        in.Notes,
	}
	rec.Touch(uc.now())

	err := uc.txRunner.Run(ctx, func(repo repository.StockRecordRepository) error {
		return repo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("stock_id", rec.ID).
		Str("equipment_id", rec.EquipmentRef).
		Int("total", rec.Total).
		Msg("inventario creado")
	return toStockResponse(rec), nil
}

// GetByID obtiene un registro por ID.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.StockResponse, error) {
	rec, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return toStockResponse(rec), nil
}

// GetByEquipment obtiene el registro asociado a un equipo del catálogo.
func (uc *UseCase) GetByEquipment(ctx context.Context, equipmentID string) (*dto.StockResponse, error) {
	rec, err := uc.repo.GetByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return toStockResponse(rec), nil
}

// Lease arrienda qty unidades: available -= qty, leased += qty.
func (uc *UseCase) Lease(ctx context.Context, id string, qty int) (*dto.StockResponse, error) {
	q, err := ledger.NewPositiveQuantity(qty)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, id, "lease", func(rec *entity.StockRecord, now time.Time) error {
		return ledger.Lease(rec, q, now)
	})
}

// Return registra la devolución de qty unidades arrendadas.
func (uc *UseCase) Return(ctx context.Context, id string, qty int) (*dto.StockResponse, error) {
	q, err := ledger.NewPositiveQuantity(qty)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, id, "return", func(rec *entity.StockRecord, now time.Time) error {
		return ledger.Return(rec, q, now)
	})
}

// Replenish agrega qty unidades nuevas a la flota.
func (uc *UseCase) Replenish(ctx context.Context, id string, qty int) (*dto.StockResponse, error) {
	q, err := ledger.NewPositiveQuantity(qty)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, id, "replenish", func(rec *entity.StockRecord, now time.Time) error {
		return ledger.Replenish(rec, q, now)
	})
}

// Replace reemplazo administrativo de contadores, ubicación y observaciones.
// La invariante se valida antes de tocar el registro.
func (uc *UseCase) Replace(ctx context.Context, id string, in dto.ReplaceStockRequest) (*dto.StockResponse, error) {
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, domain.ErrInvalidInput
	}
	counters := ledger.Counters{Available: in.Available, Minimum: in.Minimum, Total: in.Total, Leased: in.Leased}
	if err := counters.Validate(); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, id, "replace", func(rec *entity.StockRecord, now time.Time) error {
		return ledger.Replace(rec, counters, location, in.Notes, now)
	})
}

// Delete da de baja el registro; se rechaza mientras haya unidades arrendadas.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(repo repository.StockRecordRepository) error {
		rec, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if err := ledger.CanDelete(rec); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		uc.logFailure("delete", id, err)
		return err
	}
	uc.log.Info().Str("stock_id", id).Msg("inventario eliminado")
	return nil
}

// CheckAvailability indica si el equipo tiene al menos qty unidades disponibles.
// Sin registro para el equipo devuelve false sin error. No modifica estado.
func (uc *UseCase) CheckAvailability(ctx context.Context, equipmentID string, qty int) (bool, error) {
	q, err := ledger.NewPositiveQuantity(qty)
	if err != nil {
		return false, err
	}
	rec, err := uc.repo.GetByEquipment(ctx, equipmentID)
	if err != nil {
		return false, err
	}
	return ledger.HasAvailable(rec, q), nil
}

func (uc *UseCase) mutate(
	ctx context.Context,
	id, op string,
	apply func(rec *entity.StockRecord, now time.Time) error,
) (*dto.StockResponse, error) {
	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(repo repository.StockRecordRepository) error {
		rec, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if err := apply(rec, uc.now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		uc.logFailure(op, id, err)
		return nil, err
	}
	uc.log.Info().
		Str("op", op).
		Str("stock_id", out.ID).
		Int("available", out.Available).
		Int("leased", out.Leased).
		Int("total", out.Total).
		Str("status", string(out.Status)).
		Msg("inventario actualizado")
	return toStockResponse(out), nil
}

func (uc *UseCase) logFailure(op, id string, err error) {
	var lerr *domain.LedgerError
	switch {
	case errors.Is(err, domain.ErrContention):
		uc.log.Warn().Str("op", op).Str("stock_id", id).Msg("contención en registro de inventario")
	case errors.As(err, &lerr), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		uc.log.Debug().Str("op", op).Str("stock_id", id).Err(err).Msg("operación rechazada")
	default:
		uc.log.Error().Str("op", op).Str("stock_id", id).Err(err).Msg("operación de inventario fallida")
	}
}

func toStockResponse(r *entity.StockRecord) *dto.StockResponse {
	if r == nil {
		return nil
	}
	return &dto.StockResponse{
		ID:          r.ID,
		EquipmentID: r.EquipmentRef,
		Available:   r.Available,
		Minimum:     r.Minimum,
		Total:       r.Total,
		Leased:      r.Leased,
		Location:    r.Location,
		Status:      string(r.Status),
		Notes:       r.Notes,
		LastUpdated: r.LastUpdated,
	}
}
