package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/bootstrap"
	"github.com/jhoicas/telar-erp/internal/infrastructure/cache"
	"github.com/jhoicas/telar-erp/internal/infrastructure/events"
	"github.com/jhoicas/telar-erp/internal/infrastructure/excel"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/telar-erp/internal/interfaces/http"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// envelope respuesta genérica de la API.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	db := memory.New()
	svc := bootstrap.NewServices(bootstrap.Infra{
		Store:    db.Store(),
		TxRunner: db,
		Cache:    cache.Noop{},
		Events:   events.Noop{},
		PDF:      pdf.NewMarotoRenderer(),
		Sheets:   excel.NewWriter(),
		JWT:      auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
		Log:      logger.Nop(),
	})
	return apphttp.NewApp(svc.RouterDeps(bootstrap.HTTPOptions{
		AppName:   "telar-erp-test",
		JWTSecret: testJWTSecret,
	}, logger.Nop()))
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, raw
}

// onboard da de alta una empresa y devuelve el token de su administrador.
func onboard(t *testing.T, app *fiber.App, taxID, email string) string {
	t.Helper()
	status, env, raw := call(t, app, http.MethodPost, "/api/v1/companies", "", map[string]any{
		"name":           "Tejidos " + taxID,
		"tax_id":         taxID,
		"admin_name":     "Admin",
		"admin_email":    email,
		"admin_password": "secreto123",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func dataID(t *testing.T, env envelope) string {
	t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func createProduct(t *testing.T, app *fiber.App, token, sku string) string {
	t.Helper()
	status, env, raw := call(t, app, http.MethodPost, "/api/v1/products", token, map[string]any{
		"sku":           sku,
		"name":          "Denim índigo",
		"category":      "fabric",
		"unit":          "m",
		"price":         "25000",
		"reorder_point": "10",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return dataID(t, env)
}

func TestHealth_Envelope(t *testing.T) {
	app := newAPI(t)
	status, env, _ := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
}

func TestAPI_FlujoInventarioYPedido(t *testing.T) {
	app := newAPI(t)
	token := onboard(t, app, "900100", "admin@tejidos.co")

	productID := createProduct(t, app, token, "DEN-001")

	status, env, raw := call(t, app, http.MethodPost, "/api/v1/locations", token, map[string]any{
		"name": "Bodega principal", "type": "warehouse",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	locationID := dataID(t, env)

	status, _, raw = call(t, app, http.MethodPost, "/api/v1/inventory/movements", token, map[string]any{
		"product_id":  productID,
		"location_id": locationID,
		"type":        "IN",
		"quantity":    "120",
		"unit_cost":   "18000",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, env, raw = call(t, app, http.MethodGet, "/api/v1/inventory/stock?location_id="+locationID, token, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Contains(t, string(env.Data), productID)

	status, env, raw = call(t, app, http.MethodPost, "/api/v1/customers", token, map[string]any{
		"name": "Confecciones Andina", "tax_id": "800200",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	customerID := dataID(t, env)

	status, env, raw = call(t, app, http.MethodPost, "/api/v1/orders", token, map[string]any{
		"customer_id": customerID,
		"location_id": locationID,
		"items":       []map[string]any{{"product_id": productID, "quantity": "30"}},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	orderID := dataID(t, env)

	status, env, raw = call(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", token, map[string]any{
		"status": "CONFIRMED",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Contains(t, string(env.Data), `"status":"CONFIRMED"`)

	// DRAFT ya no es alcanzable desde CONFIRMED
	status, env, _ = call(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", token, map[string]any{
		"status": "DRAFT",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Code)

	status, env, _ = call(t, app, http.MethodGet, "/api/v1/orders/"+orderID+"/history", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"to_status":"CONFIRMED"`)
}

func TestAPI_AislamientoEntreEmpresas(t *testing.T) {
	app := newAPI(t)
	tokenA := onboard(t, app, "900101", "a@tejidos.co")
	tokenB := onboard(t, app, "900102", "b@tejidos.co")

	productID := createProduct(t, app, tokenA, "HIL-001")

	status, env, _ := call(t, app, http.MethodGet, "/api/v1/products/"+productID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, env, _ = call(t, app, http.MethodGet, "/api/v1/products", tokenB, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), productID)

	// el mismo SKU es válido en otra empresa
	createProduct(t, app, tokenB, "HIL-001")
}

func TestAPI_ErrorDeValidacion(t *testing.T) {
	app := newAPI(t)
	token := onboard(t, app, "900103", "v@tejidos.co")

	status, env, _ := call(t, app, http.MethodPost, "/api/v1/products", token, map[string]any{
		"sku": "X-1", "name": "Sin categoría", "unit": "lb",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "required", env.Fields["category"])
	assert.Equal(t, "oneof", env.Fields["unit"])
}

func TestAPI_CuerpoMalFormado(t *testing.T) {
	app := newAPI(t)
	token := onboard(t, app, "900104", "m@tejidos.co")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_OperarioNoCreaProductos(t *testing.T) {
	app := newAPI(t)
	admin := onboard(t, app, "900105", "jefe@tejidos.co")

	status, _, raw := call(t, app, http.MethodPost, "/api/v1/users", admin, map[string]any{
		"email": "operario@tejidos.co", "password": "operario123", "name": "Operario", "role": "operator",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, env, raw := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": "operario@tejidos.co", "password": "operario123",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	status, env, _ = call(t, app, http.MethodPost, "/api/v1/products", login.Token, map[string]any{
		"sku": "OP-1", "name": "Tela", "category": "fabric", "unit": "m",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	// lectura permitida
	status, _, _ = call(t, app, http.MethodGet, "/api/v1/products", login.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_ModuloDesactivado(t *testing.T) {
	app := newAPI(t)
	token := onboard(t, app, "900106", "mod@tejidos.co")

	status, _, raw := call(t, app, http.MethodPut, "/api/v1/companies/me/modules/orders", token, map[string]any{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, status, string(raw))

	status, env, _ := call(t, app, http.MethodGet, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "MODULE_DISABLED", env.Code)

	// los demás módulos siguen activos
	status, _, _ = call(t, app, http.MethodGet, "/api/v1/products", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_SinToken(t *testing.T) {
	app := newAPI(t)
	status, env, _ := call(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", env.Code)
}

func TestAPI_EmpresaDuplicada(t *testing.T) {
	app := newAPI(t)
	onboard(t, app, "900107", "dup@tejidos.co")

	status, env, _ := call(t, app, http.MethodPost, "/api/v1/companies", "", map[string]any{
		"name": "Otra", "tax_id": "900107", "admin_name": "X",
		"admin_email": "otro@tejidos.co", "admin_password": "secreto123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", env.Code)
}
