package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/bootstrap"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/cache"
	"github.com/jhoicas/telar-erp/internal/infrastructure/events"
	"github.com/jhoicas/telar-erp/internal/infrastructure/excel"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/internal/infrastructure/pdf"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

func newServices() *bootstrap.Services {
	db := memory.New()
	return bootstrap.NewServices(bootstrap.Infra{
		Store: db.Store(), TxRunner: db,
		Cache: cache.Noop{}, Events: events.Noop{},
		PDF: pdf.NewMarotoRenderer(), Sheets: excel.NewWriter(),
		JWT: auth.JWTConfig{Secret: "uc-secret", ExpMinutes: 5, Issuer: "telar-erp"},
		Log: logger.Nop(),
	})
}

func onboard(t *testing.T, svc *bootstrap.Services, taxID string) (context.Context, *dto.OnboardingResponse) {
	t.Helper()
	out, err := svc.Company.Onboard(context.Background(), dto.CreateCompanyRequest{
		Name: "Hilados " + taxID, TaxID: taxID,
		AdminName: "Admin", AdminEmail: "admin-" + taxID + "@telar.test", AdminPassword: "secreto123",
	})
	require.NoError(t, err)
	return tenant.New(context.Background(), out.Company.ID, out.Admin.ID, entity.RoleAdmin), out
}

func TestOnboard_CreaModulosYAdmin(t *testing.T) {
	svc := newServices()
	ctx, out := onboard(t, svc, "900-1")

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleAdmin, out.Admin.Role)

	mods, err := svc.Modules.List(ctx)
	require.NoError(t, err)
	assert.Len(t, mods, len(entity.AllModules))
	for _, m := range mods {
		assert.True(t, m.IsActive, m.ModuleName)
	}

	login, err := svc.Auth.Login(context.Background(), dto.LoginRequest{Email: "ADMIN-900-1@telar.test", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, out.Admin.ID, login.User.ID)
}

func TestOnboard_Duplicados(t *testing.T) {
	svc := newServices()
	onboard(t, svc, "900-2")

	_, err := svc.Company.Onboard(context.Background(), dto.CreateCompanyRequest{
		Name: "Otra", TaxID: "900-2", AdminName: "X", AdminEmail: "x@telar.test", AdminPassword: "secreto123",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = svc.Company.Onboard(context.Background(), dto.CreateCompanyRequest{
		Name: "Otra", TaxID: "900-3", AdminName: "X", AdminEmail: "admin-900-2@telar.test", AdminPassword: "secreto123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_ClaveIncorrecta(t *testing.T) {
	svc := newServices()
	onboard(t, svc, "900-4")

	_, err := svc.Auth.Login(context.Background(), dto.LoginRequest{Email: "admin-900-4@telar.test", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Auth.Login(context.Background(), dto.LoginRequest{Email: "nadie@telar.test", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestModules_ToggleDesactiva(t *testing.T) {
	svc := newServices()
	ctx, out := onboard(t, svc, "900-5")

	res, err := svc.Modules.Toggle(ctx, entity.ModuleQuality, dto.ToggleModuleRequest{IsActive: false})
	require.NoError(t, err)
	assert.False(t, res.IsActive)

	ok, err := svc.Modules.HasActiveModule(ctx, out.Company.ID, entity.ModuleQuality)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Modules.Toggle(ctx, "nomina", dto.ToggleModuleRequest{IsActive: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImportCSV_CreaActualizaYReportaFilas(t *testing.T) {
	svc := newServices()
	ctx, _ := onboard(t, svc, "900-6")

	_, err := svc.Products.Create(ctx, dto.CreateProductRequest{
		SKU: "DEN-1", Name: "Denim viejo", Category: entity.CategoryFabric, Unit: entity.UnitMeter,
	})
	require.NoError(t, err)

	csv := "sku;name;category;unit;price;reorder_point\n" +
		"DEN-1;Denim 12oz;fabric;m;28000,50;100\n" +
		"HIL-1;Hilo 30/1;yarn;kg;21000;50\n" +
		";Sin sku;fabric;m;1;1\n" +
		"BOT-1;Botón;metal;pc;350;10\n" +
		"TEL-9;Tela sin categoría;;;;\n"

	res, err := svc.Products.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.Errors[0].Line)
	assert.Equal(t, 5, res.Errors[1].Line)
	assert.Equal(t, "BOT-1", res.Errors[1].SKU)

	list, err := svc.Products.List(ctx, dto.ProductFilterRequest{Search: "DEN-1"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Denim 12oz", list.Items[0].Name)
	assert.True(t, list.Items[0].Price.Equal(decimal.RequireFromString("28000.5")))

	list, err = svc.Products.List(ctx, dto.ProductFilterRequest{Search: "TEL-9"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.CategoryFabric, list.Items[0].Category)
	assert.Equal(t, entity.UnitMeter, list.Items[0].Unit)
}

func TestImportCSV_Windows1252(t *testing.T) {
	svc := newServices()
	ctx, _ := onboard(t, svc, "900-7")

	// "Algodón peinado" en Windows-1252: ó = 0xF3
	raw := "sku,name\nALG-1,Algod\xf3n peinado\n"
	res, err := svc.Products.ImportCSV(ctx, strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	list, err := svc.Products.List(ctx, dto.ProductFilterRequest{Search: "ALG-1"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Algodón peinado", list.Items[0].Name)
}

func TestImportCSV_SinColumnaSKU(t *testing.T) {
	svc := newServices()
	ctx, _ := onboard(t, svc, "900-8")

	_, err := svc.Products.ImportCSV(ctx, strings.NewReader("name,price\nTela,1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLocationDelete_ConStockEsConflicto(t *testing.T) {
	svc := newServices()
	ctx, _ := onboard(t, svc, "900-9")

	p, err := svc.Products.Create(ctx, dto.CreateProductRequest{
		SKU: "P-1", Name: "Tela", Category: entity.CategoryFabric, Unit: entity.UnitMeter,
	})
	require.NoError(t, err)
	full, err := svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Bodega", Type: entity.LocationWarehouse})
	require.NoError(t, err)
	empty, err := svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Tienda", Type: entity.LocationStore})
	require.NoError(t, err)

	cost := decimal.NewFromInt(100)
	_, err = svc.Movements.RegisterMovementFromRequest(ctx, dto.RegisterMovementRequest{
		ProductID: p.ID, LocationID: full.ID, Type: string(entity.MovementIN),
		Quantity: decimal.NewFromInt(3), UnitCost: &cost,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Location.Delete(ctx, full.ID), domain.ErrConflict)
	require.NoError(t, svc.Location.Delete(ctx, empty.ID))
	_, err = svc.Location.GetByID(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompany_UpdateOwnSoloTocaCamposEnviados(t *testing.T) {
	svc := newServices()
	ctx, out := onboard(t, svc, "900-10")

	phone := "604 555 0101"
	res, err := svc.Company.UpdateOwn(ctx, dto.UpdateCompanyRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, res.Phone)
	assert.Equal(t, out.Company.Name, res.Name)

	_, err = svc.Company.GetOwn(context.Background())
	assert.Error(t, err)
}

func TestRegister_QuedaInactivoHastaQueUnAdminLoActive(t *testing.T) {
	svc := newServices()
	ctx, out := onboard(t, svc, "900-11")

	user, err := svc.Auth.RegisterUser(context.Background(), dto.RegisterRequest{
		Email: "tejedor@telar.test", Password: "secreto123", CompanyID: out.Company.ID, Name: "Tejedor",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperator, user.Role)
	assert.Equal(t, entity.UserStatusInactive, user.Status)

	login := dto.LoginRequest{Email: "tejedor@telar.test", Password: "secreto123"}
	_, err = svc.Auth.Login(context.Background(), login)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	active := entity.UserStatusActive
	_, err = svc.Users.Update(ctx, user.ID, dto.UpdateUserRequest{Status: &active})
	require.NoError(t, err)
	res, err := svc.Auth.Login(context.Background(), login)
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
}
