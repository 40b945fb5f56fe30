package http

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/application/dto"
	"github.com/erinaldohen/ddcosmeticos-backend-sub000/internal/domain"
)

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error { return writeError(c, err) })
	return app
}

func decodeError(t *testing.T, app *fiber.App) (int, dto.ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_InternoNoExponeDetalle(t *testing.T) {
	status, body := decodeError(t, errorApp(fmt.Errorf("guardar venta: %w",
		fmt.Errorf(`ERROR: relation "sales" does not exist (SQLSTATE 42P01)`))))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Message, "SQLSTATE")
	assert.NotContains(t, body.Message, "sales")
}

func TestWriteError_RechazoConservaCodigo(t *testing.T) {
	status, body := decodeError(t, errorApp(domain.Reject(domain.CodeNoOpenSession, domain.ErrConflict, "abra la caja antes de vender")))

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, domain.CodeNoOpenSession, body.Code)
	assert.Equal(t, "abra la caja antes de vender", body.Message)
}
