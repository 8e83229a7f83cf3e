// Package smoke recorre los flujos principales contra una API en ejecución.
package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Step resultado de un paso del recorrido.
type Step struct {
	Name    string
	Status  int
	Elapsed time.Duration
	Err     error
}

// Report resultado completo; OK solo si todos los pasos pasaron.
type Report struct {
	Steps []Step
}

// OK indica si todos los pasos terminaron bien.
func (r Report) OK() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return len(r.Steps) > 0
}

// Client cliente HTTP de la API basado en resty.
type Client struct {
	http  *resty.Client
	log   *logger.Logger
	token string
}

// NewClient apunta el cliente a baseURL (sin /api/v1).
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: rc, log: log}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.status, e.code, e.message)
}

// do ejecuta la petición y decodifica data en out (si no es nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return 0, err
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return resp.StatusCode(), fmt.Errorf("respuesta no JSON (HTTP %d)", resp.StatusCode())
	}
	if resp.IsError() {
		return resp.StatusCode(), &apiError{status: resp.StatusCode(), code: env.Code, message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode(), fmt.Errorf("decodificar data: %w", err)
		}
	}
	return resp.StatusCode(), nil
}

type idOnly struct {
	ID string `json:"id"`
}

// Run ejecuta el recorrido: salud, alta de empresa, catálogo, inventario, pedido y dashboard.
// Se detiene en el primer paso fallido.
func (c *Client) Run(ctx context.Context) Report {
	var (
		rep                                       Report
		productID, locationID, customerID, orderID string
	)
	suffix := uuid.NewString()[:8]

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"health", func() (int, error) {
			return c.do(ctx, resty.MethodGet, "/health", nil, nil)
		}},
		{"onboard", func() (int, error) {
			var out struct {
				Token string `json:"token"`
			}
			st, err := c.do(ctx, resty.MethodPost, "/api/v1/companies", map[string]any{
				"name":           "Smoke " + suffix,
				"tax_id":         "SMK-" + suffix,
				"admin_name":     "Smoke",
				"admin_email":    "smoke-" + suffix + "@telar.local",
				"admin_password": "smoke-" + suffix,
			}, &out)
			c.token = out.Token
			return st, err
		}},
		{"location", func() (int, error) {
			var out idOnly
			st, err := c.do(ctx, resty.MethodPost, "/api/v1/locations", map[string]any{
				"name": "Bodega smoke", "type": "warehouse",
			}, &out)
			locationID = out.ID
			return st, err
		}},
		{"product", func() (int, error) {
			var out idOnly
			st, err := c.do(ctx, resty.MethodPost, "/api/v1/products", map[string]any{
				"sku": "SMK-" + suffix, "name": "Tela smoke", "category": "fabric", "unit": "m",
				"price": "10000", "reorder_point": "5",
			}, &out)
			productID = out.ID
			return st, err
		}},
		{"movement_in", func() (int, error) {
			return c.do(ctx, resty.MethodPost, "/api/v1/inventory/movements", map[string]any{
				"product_id": productID, "location_id": locationID, "type": "IN",
				"quantity": "50", "unit_cost": "7000",
			}, nil)
		}},
		{"stock", func() (int, error) {
			return c.do(ctx, resty.MethodGet, "/api/v1/inventory/stock?product_id="+productID, nil, nil)
		}},
		{"customer", func() (int, error) {
			var out idOnly
			st, err := c.do(ctx, resty.MethodPost, "/api/v1/customers", map[string]any{
				"name": "Cliente smoke",
			}, &out)
			customerID = out.ID
			return st, err
		}},
		{"order", func() (int, error) {
			var out idOnly
			st, err := c.do(ctx, resty.MethodPost, "/api/v1/orders", map[string]any{
				"customer_id": customerID, "location_id": locationID,
				"items": []map[string]any{{"product_id": productID, "quantity": "5"}},
			}, &out)
			orderID = out.ID
			return st, err
		}},
		{"order_confirm", func() (int, error) {
			return c.do(ctx, resty.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]any{
				"status": "CONFIRMED",
			}, nil)
		}},
		{"dashboard", func() (int, error) {
			return c.do(ctx, resty.MethodGet, "/api/v1/dashboard/summary", nil, nil)
		}},
	}

	for _, s := range steps {
		start := time.Now()
		status, err := s.fn()
		step := Step{Name: s.name, Status: status, Elapsed: time.Since(start), Err: err}
		rep.Steps = append(rep.Steps, step)
		ev := c.log.Info()
		if err != nil {
			ev = c.log.Error().Err(err)
		}
		ev.Str("step", s.name).Int("status", status).Dur("elapsed", step.Elapsed).Msg("smoke")
		if err != nil {
			break
		}
	}
	return rep
}
