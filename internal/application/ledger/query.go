package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/equipment-ledger/internal/application/dto"
	"github.com/jhoicas/equipment-ledger/internal/domain"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

// QueryUseCase proyecciones de solo lectura sobre el libro de stock.
// Cada consulta lee el último estado confirmado; no bloquea a los escritores.
type QueryUseCase struct {
	repo    repository.StockRecordRepository
	catalog repository.EquipmentCatalog
	reports ReportGenerator
	now     func() time.Time
}

// NewQueryUseCase construye el caso de uso. catalog y reports pueden ser nil:
// sin catálogo el filtro por tipo de equipo no devuelve registros y sin generador
// el reporte PDF no está disponible.
func NewQueryUseCase(repo repository.StockRecordRepository, catalog repository.EquipmentCatalog, reports ReportGenerator) *QueryUseCase {
	return &QueryUseCase{repo: repo, catalog: catalog, reports: reports, now: time.Now}
}

// List aplica los filtros de la consulta (combinados con AND).
func (uc *QueryUseCase) List(ctx context.Context, q dto.StockQuery) (*dto.StockListResponse, error) {
	var filter repository.StockFilter

	if s := strings.ToUpper(strings.TrimSpace(q.Status)); s != "" {
		status := entity.StockStatus(s)
		if !status.Valid() {
			return nil, domain.ErrInvalidInput
		}
		filter.Status = status
	}
	filter.Location = strings.TrimSpace(q.Location)
	if q.MinAvailable != nil {
		if *q.MinAvailable < 0 {
			return nil, domain.ErrInvalidInput
		}
		filter.MinAvailable = q.MinAvailable
	}
	if t := strings.TrimSpace(q.EquipmentType); t != "" {
		refs, err := uc.equipmentOfType(ctx, t)
		if err != nil {
			return nil, err
		}
		filter.EquipmentRefs = refs
	}

	return uc.list(ctx, filter)
}

// Critical registros en o bajo su stock mínimo (incluye agotados).
func (uc *QueryUseCase) Critical(ctx context.Context) (*dto.StockListResponse, error) {
	return uc.list(ctx, repository.StockFilter{BelowMinimum: true})
}

// Depleted registros sin unidades disponibles.
func (uc *QueryUseCase) Depleted(ctx context.Context) (*dto.StockListResponse, error) {
	return uc.list(ctx, repository.StockFilter{Status: entity.StatusDepleted})
}

// Total suma del contador indicado (total, available, leased) sobre todos los registros.
func (uc *QueryUseCase) Total(ctx context.Context, kind string) (*dto.StockTotalResponse, error) {
	field := repository.SumField(strings.ToLower(kind))
	if !field.Valid() {
		return nil, domain.ErrInvalidInput
	}
	v, err := uc.repo.Sum(ctx, field)
	if err != nil {
		return nil, err
	}
	return &dto.StockTotalResponse{Kind: string(field), Value: v}, nil
}

// Report genera el PDF resumen con todos los registros y los agregados.
func (uc *QueryUseCase) Report(ctx context.Context) ([]byte, error) {
	if uc.reports == nil {
		return nil, fmt.Errorf("reporte PDF no configurado")
	}
	records, err := uc.repo.List(ctx, repository.StockFilter{})
	if err != nil {
		return nil, err
	}
	report := StockReport{GeneratedAt: uc.now().UTC(), Records: records}
	// Agregados del mismo listado para que el PDF sea coherente consigo mismo.
	for _, r := range records {
		report.Total += int64(r.Total)
		report.Available += int64(r.Available)
		report.Leased += int64(r.Leased)
	}
	return uc.reports.GenerateStockReport(ctx, report)
}

func (uc *QueryUseCase) equipmentOfType(ctx context.Context, equipmentType string) ([]string, error) {
	if uc.catalog == nil {
		return []string{}, nil
	}
	refs, err := uc.catalog.ListIDsByType(ctx, equipmentType)
	if err != nil {
		return nil, fmt.Errorf("catálogo de equipos: %w", err)
	}
	if refs == nil {
		refs = []string{}
	}
	return refs, nil
}

func (uc *QueryUseCase) list(ctx context.Context, filter repository.StockFilter) (*dto.StockListResponse, error) {
	records, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockResponse, 0, len(records))
	for _, r := range records {
		items = append(items, *toStockResponse(r))
	}
	return &dto.StockListResponse{Items: items, Total: len(items)}, nil
}
