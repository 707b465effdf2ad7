package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/equipment-ledger/internal/interfaces/http"
	"github.com/jhoicas/equipment-ledger/pkg/logger"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Out: &buf})

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "/missing", entry["path"])
	assert.EqualValues(t, 404, entry["status"])
}
