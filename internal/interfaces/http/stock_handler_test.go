package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/equipment-ledger/internal/application/dto"
	"github.com/jhoicas/equipment-ledger/internal/application/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
	"github.com/jhoicas/equipment-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/equipment-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/equipment-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app   *fiber.App
	store *memory.Store
}

func buildTestAPI(t *testing.T, lockTimeout time.Duration) testAPI {
	t.Helper()
	store := memory.NewStore(lockTimeout)
	catalog := memory.NewEquipmentCatalog()
	catalog.Register("andamio-01", "andamio")
	catalog.Register("pluma-01", "grua")

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger: ledger.NewUseCase(store, store, nil),
		Query:  ledger.NewQueryUseCase(store, catalog, pdf.NewStockReportGenerator("")),
	})
	return testAPI{app: app, store: store}
}

func (a testAPI) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// createFixture crea {available:10, minimum:5, total:15, leased:5}.
func (a testAPI) createFixture(t *testing.T, equipment string) dto.StockResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/stock", dto.CreateStockRequest{
		EquipmentID: equipment, Available: 10, Minimum: 5, Total: 15, Leased: 5, Location: "Bodega A",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.StockResponse](t, resp)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta y consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_CrearYConsultar(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	created := api.createFixture(t, "andamio-01")
	assert.Equal(t, "AVAILABLE", created.Status)

	resp := api.do(t, http.MethodGet, "/api/stock/"+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[dto.StockResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)

	resp = api.do(t, http.MethodGet, "/api/stock/equipment/andamio-01", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[dto.StockResponse](t, resp).ID)
}

func TestStock_Crear_Validaciones(t *testing.T) {
	api := buildTestAPI(t, time.Second)

	resp := api.do(t, http.MethodPost, "/api/stock", dto.CreateStockRequest{EquipmentID: "andamio-01", Available: 1, Total: 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "location")

	resp = api.do(t, http.MethodPost, "/api/stock", dto.CreateStockRequest{EquipmentID: "andamio-01", Available: 1, Total: 2, Location: "A"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVARIANT_VIOLATION", decode[dto.ErrorResponse](t, resp).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/stock", bytes.NewBufferString("{no es json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	raw, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, raw.StatusCode)

	api.createFixture(t, "pluma-01")
	resp = api.do(t, http.MethodPost, "/api/stock", dto.CreateStockRequest{EquipmentID: "pluma-01", Available: 1, Total: 1, Location: "A"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, resp).Code)
}

func TestStock_NoEncontrado(t *testing.T) {
	api := buildTestAPI(t, time.Second)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/stock/nope"},
		{http.MethodGet, "/api/stock/equipment/nope"},
		{http.MethodPut, "/api/stock/nope/lease?qty=1"},
		{http.MethodDelete, "/api/stock/nope"},
	} {
		resp := api.do(t, tc.method, tc.path, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code, tc.path)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones del libro de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_Arriendo_StockInsuficienteConDetalles(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	rec := api.createFixture(t, "andamio-01")

	resp := api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/lease?qty=12", nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Contains(t, body.Message, "Disponible: 10")
	require.NotNil(t, body.Details)
	assert.Equal(t, 10, body.Details.Available)
	assert.Equal(t, 12, body.Details.Requested)
	assert.Equal(t, rec.ID, body.Details.StockID)
}

func TestStock_ArriendoDevolucionReposicion(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	rec := api.createFixture(t, "andamio-01")

	resp := api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/lease?qty=7", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.StockResponse](t, resp)
	assert.Equal(t, 3, out.Available)
	assert.Equal(t, 12, out.Leased)
	assert.Equal(t, "CRITICAL", out.Status)

	resp = api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/return?qty=12", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out = decode[dto.StockResponse](t, resp)
	assert.Equal(t, 15, out.Available)
	assert.Equal(t, 0, out.Leased)

	resp = api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/return?qty=1", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "OVER_RETURN", decode[dto.ErrorResponse](t, resp).Code)

	resp = api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/replenish?qty=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 20, decode[dto.StockResponse](t, resp).Total)
}

func TestStock_CantidadInvalida(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	rec := api.createFixture(t, "andamio-01")

	for _, q := range []string{"", "?qty=0", "?qty=-2", "?qty=abc", "?qty=1.5"} {
		resp := api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/lease"+q, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "INVALID_QUANTITY", decode[dto.ErrorResponse](t, resp).Code, q)
	}
}

func TestStock_ReemplazoYBaja(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	rec := api.createFixture(t, "andamio-01")

	resp := api.do(t, http.MethodPut, "/api/stock/"+rec.ID, dto.ReplaceStockRequest{Available: 10, Minimum: 5, Total: 14, Leased: 5, Location: "B"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVARIANT_VIOLATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = api.do(t, http.MethodDelete, "/api/stock/"+rec.ID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "HAS_ACTIVE_LEASE", body.Code)
	require.NotNil(t, body.Details)
	assert.Equal(t, 5, body.Details.Leased)

	resp = api.do(t, http.MethodPut, "/api/stock/"+rec.ID, dto.ReplaceStockRequest{Available: 15, Minimum: 5, Total: 15, Leased: 0, Location: "Bodega B"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bodega B", decode[dto.StockResponse](t, resp).Location)

	resp = api.do(t, http.MethodDelete, "/api/stock/"+rec.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestStock_RegistroBloqueadoEsContencion(t *testing.T) {
	api := buildTestAPI(t, 30*time.Millisecond)
	rec := api.createFixture(t, "andamio-01")

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = api.store.Run(context.Background(), func(repo repository.StockRecordRepository) error {
			_, _ = repo.GetForUpdate(context.Background(), rec.ID)
			close(held)
			<-done
			return nil
		})
	}()
	<-held
	defer close(done)

	resp := api.do(t, http.MethodPut, "/api/stock/"+rec.ID+"/lease?qty=1", nil)

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "CONTENTION", decode[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_ListadosYFiltros(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	a := api.createFixture(t, "andamio-01")
	p := api.createFixture(t, "pluma-01")
	require.Equal(t, fiber.StatusOK, api.do(t, http.MethodPut, "/api/stock/"+p.ID+"/lease?qty=10", nil).StatusCode)

	resp := api.do(t, http.MethodGet, "/api/stock", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[dto.StockListResponse](t, resp).Total)

	resp = api.do(t, http.MethodGet, "/api/stock/depleted", nil)
	list := decode[dto.StockListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, p.ID, list.Items[0].ID)

	resp = api.do(t, http.MethodGet, "/api/stock/critical", nil)
	assert.Len(t, decode[dto.StockListResponse](t, resp).Items, 1)

	resp = api.do(t, http.MethodGet, "/api/stock?equipmentType=andamio&minAvailable=1", nil)
	list = decode[dto.StockListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].ID)

	resp = api.do(t, http.MethodGet, "/api/stock?status=available", nil)
	assert.Len(t, decode[dto.StockListResponse](t, resp).Items, 1)

	resp = api.do(t, http.MethodGet, "/api/stock?minAvailable=x", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/stock?status=otro", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStock_Disponibilidad(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	api.createFixture(t, "andamio-01")

	resp := api.do(t, http.MethodGet, "/api/stock/availability/andamio-01?qty=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.AvailabilityResponse](t, resp).Available)

	resp = api.do(t, http.MethodGet, "/api/stock/availability/andamio-01?qty=11", nil)
	assert.False(t, decode[dto.AvailabilityResponse](t, resp).Available)

	resp = api.do(t, http.MethodGet, "/api/stock/availability/otro?qty=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, decode[dto.AvailabilityResponse](t, resp).Available)

	resp = api.do(t, http.MethodGet, "/api/stock/availability/andamio-01?qty=0", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStock_Totales(t *testing.T) {
	api := buildTestAPI(t, time.Second)

	resp := api.do(t, http.MethodGet, "/api/stock/reports/leased", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), decode[dto.StockTotalResponse](t, resp).Value)

	api.createFixture(t, "andamio-01")
	api.createFixture(t, "pluma-01")
	resp = api.do(t, http.MethodGet, "/api/stock/reports/total", nil)
	assert.Equal(t, int64(30), decode[dto.StockTotalResponse](t, resp).Value)

	resp = api.do(t, http.MethodGet, "/api/stock/reports/minimum", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStock_ReportePDF(t *testing.T) {
	api := buildTestAPI(t, time.Second)
	api.createFixture(t, "andamio-01")

	resp := api.do(t, http.MethodGet, "/api/stock/reports/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}
