//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/bootstrap"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/cache"
	"github.com/jhoicas/telar-erp/internal/infrastructure/events"
	"github.com/jhoicas/telar-erp/internal/infrastructure/excel"
	"github.com/jhoicas/telar-erp/internal/infrastructure/pdf"
	"github.com/jhoicas/telar-erp/internal/infrastructure/postgres"
	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("telar_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "contenedor postgres: %v\n", err)
		os.Exit(1)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "dsn: %v\n", err)
		os.Exit(1)
	}

	testPool, err = postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10}, logger.Nop())
	if err == nil {
		var mig *postgres.Migrator
		if mig, err = postgres.NewMigrator(testPool, logger.Nop()); err == nil {
			err = mig.Up(ctx)
		}
	}
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "preparar base: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newServices() *bootstrap.Services {
	return bootstrap.NewServices(bootstrap.Infra{
		Store:    postgres.NewStore(testPool),
		TxRunner: postgres.NewTxRunner(testPool),
		Cache:    cache.Noop{},
		Events:   events.Noop{},
		PDF:      pdf.NewMarotoRenderer(),
		Sheets:   excel.NewWriter(),
		JWT:      auth.JWTConfig{Secret: "it-secret", ExpMinutes: 5, Issuer: "telar-erp"},
		Log:      logger.Nop(),
	})
}

// onboard crea una empresa y devuelve el contexto de su administrador.
func onboard(t *testing.T, svc *bootstrap.Services, taxID string) context.Context {
	t.Helper()
	out, err := svc.Company.Onboard(context.Background(), dto.CreateCompanyRequest{
		Name: "Empresa " + taxID, TaxID: taxID,
		AdminName: "Admin", AdminEmail: "admin-" + taxID + "@telar.test", AdminPassword: "secreto123",
	})
	require.NoError(t, err)
	return tenant.New(context.Background(), out.Company.ID, out.Admin.ID, entity.RoleAdmin)
}

func newProduct(t *testing.T, ctx context.Context, svc *bootstrap.Services, sku string) string {
	t.Helper()
	p, err := svc.Products.Create(ctx, dto.CreateProductRequest{
		SKU: sku, Name: "Producto " + sku, Category: entity.CategoryFabric, Unit: entity.UnitMeter,
		Price: decimal.NewFromInt(1000), ReorderPoint: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	return p.ID
}

func TestIntegration_AislamientoDeProductos(t *testing.T) {
	svc := newServices()
	ctxA := onboard(t, svc, "IT-A")
	ctxB := onboard(t, svc, "IT-B")

	id := newProduct(t, ctxA, svc, "SKU-1")

	_, err := svc.Products.GetByID(ctxB, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.Products.List(ctxB, dto.ProductFilterRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total)

	// SKU único por empresa, no global
	newProduct(t, ctxB, svc, "SKU-1")
	_, err = svc.Products.Create(ctxA, dto.CreateProductRequest{
		SKU: "SKU-1", Name: "Repetido", Category: entity.CategoryFabric, Unit: entity.UnitMeter,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestIntegration_SalidasConcurrentesNoDejanStockNegativo(t *testing.T) {
	svc := newServices()
	ctx := onboard(t, svc, "IT-C")
	productID := newProduct(t, ctx, svc, "CONC-1")
	loc, err := svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Bodega", Type: entity.LocationWarehouse})
	require.NoError(t, err)

	cost := decimal.NewFromInt(500)
	_, err = svc.Movements.RegisterMovementFromRequest(ctx, dto.RegisterMovementRequest{
		ProductID: productID, LocationID: loc.ID, Type: string(entity.MovementIN),
		Quantity: decimal.NewFromInt(5), UnitCost: &cost,
	})
	require.NoError(t, err)

	const workers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Movements.RegisterMovementFromRequest(ctx, dto.RegisterMovementRequest{
				ProductID: productID, LocationID: loc.ID, Type: string(entity.MovementOUT),
				Quantity: decimal.NewFromInt(1),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				fail++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, fail)
	stock, err := svc.Inventory.StockByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.True(t, stock[0].Quantity.IsZero())
}

func TestIntegration_PedidoDespachadoDescuentaStock(t *testing.T) {
	svc := newServices()
	ctx := onboard(t, svc, "IT-D")
	productID := newProduct(t, ctx, svc, "ORD-1")
	loc, err := svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Despacho", Type: entity.LocationWarehouse})
	require.NoError(t, err)
	cost := decimal.NewFromInt(800)
	_, err = svc.Movements.RegisterMovementFromRequest(ctx, dto.RegisterMovementRequest{
		ProductID: productID, LocationID: loc.ID, Type: string(entity.MovementIN),
		Quantity: decimal.NewFromInt(10), UnitCost: &cost,
	})
	require.NoError(t, err)
	cust, err := svc.Customer.Create(ctx, dto.CreateCustomerRequest{Name: "Cliente IT"})
	require.NoError(t, err)

	order, err := svc.Orders.Create(ctx, dto.CreateOrderRequest{
		CustomerID: cust.ID, LocationID: loc.ID,
		Items: []dto.OrderItemRequest{{ProductID: productID, Quantity: decimal.NewFromInt(4)}},
	})
	require.NoError(t, err)
	for _, st := range []entity.OrderStatus{
		entity.OrderStatusConfirmed, entity.OrderStatusInProduction,
		entity.OrderStatusReadyToShip, entity.OrderStatusShipped,
	} {
		_, err := svc.Orders.Transition(ctx, order.ID, dto.TransitionRequest{Status: string(st)})
		require.NoError(t, err, st)
	}

	stock, err := svc.Inventory.StockByLocation(ctx, loc.ID)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.True(t, stock[0].Quantity.Equal(decimal.NewFromInt(6)))

	history, err := svc.Orders.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestIntegration_EntradasConcurrentesEnUbicacionesNuevas(t *testing.T) {
	svc := newServices()
	ctx := onboard(t, svc, "IT-E")
	productID := newProduct(t, ctx, svc, "CONC-IN")
	locA, err := svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Bodega A", Type: entity.LocationWarehouse})
	require.NoError(t, err)
	locB, err := svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Bodega B", Type: entity.LocationWarehouse})
	require.NoError(t, err)

	// 5 entradas de 2 a 100 en A y 5 de 3 a 200 en B, ninguna fila de stock existe al empezar
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		loc, qty, cost := locA.ID, int64(2), decimal.NewFromInt(100)
		if i%2 == 1 {
			loc, qty, cost = locB.ID, 3, decimal.NewFromInt(200)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Movements.RegisterMovementFromRequest(ctx, dto.RegisterMovementRequest{
				ProductID: productID, LocationID: loc, Type: string(entity.MovementIN),
				Quantity: decimal.NewFromInt(qty), UnitCost: &cost,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stock, err := svc.Inventory.StockByProduct(ctx, productID)
	require.NoError(t, err)
	byLoc := map[string]decimal.Decimal{}
	for _, s := range stock {
		byLoc[s.LocationID] = s.Quantity
	}
	assert.True(t, byLoc[locA.ID].Equal(decimal.NewFromInt(10)), byLoc[locA.ID].String())
	assert.True(t, byLoc[locB.ID].Equal(decimal.NewFromInt(15)), byLoc[locB.ID].String())

	// (10*100 + 15*200) / 25 = 160
	p, err := svc.Products.GetByID(ctx, productID)
	require.NoError(t, err)
	assert.InDelta(t, 160.0, p.Cost.InexactFloat64(), 0.01)
}
