package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

func newProduct(sku string) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID: uuid.NewString(), SKU: sku, Name: "Tela " + sku, Category: entity.CategoryFabric,
		Unit: entity.UnitMeter, Price: decimal.NewFromInt(10), ReorderPoint: decimal.NewFromInt(5),
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestTenantIsolation_Products(t *testing.T) {
	s := New().Store()
	t1 := tenant.WithCompany(context.Background(), "c-1")
	t2 := tenant.WithCompany(context.Background(), "c-2")

	p := newProduct("DEN-001")
	p.CompanyID = "c-2" // ignorado: el tenant sale del contexto
	require.NoError(t, s.Products.Create(t1, p))
	assert.Equal(t, "c-1", p.CompanyID)

	got, err := s.Products.GetByID(t2, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, total, err := s.Products.List(t2, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	p.Name = "hack"
	assert.ErrorIs(t, s.Products.Update(t2, p), domain.ErrNotFound)
	assert.ErrorIs(t, s.Products.Delete(t2, p.ID), domain.ErrNotFound)

	got, err = s.Products.GetByID(t1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tela DEN-001", got.Name)

	// El mismo SKU es válido en otra empresa.
	require.NoError(t, s.Products.Create(t2, newProduct("DEN-001")))
	assert.ErrorIs(t, s.Products.Create(t1, newProduct("DEN-001")), domain.ErrDuplicate)
}

func TestMissingTenant(t *testing.T) {
	s := New().Store()
	ctx := context.Background()
	_, err := s.Products.GetByID(ctx, "x")
	assert.ErrorIs(t, err, tenant.ErrMissingTenant)
	_, _, err = s.Orders.List(ctx, repository.OrderFilter{})
	assert.ErrorIs(t, err, tenant.ErrMissingTenant)
	assert.ErrorIs(t, s.Movements.Create(ctx, &entity.StockMovement{ID: "m"}), tenant.ErrMissingTenant)
}

func TestRunRollsBackOnError(t *testing.T) {
	db := New()
	ctx := tenant.WithCompany(context.Background(), "c-1")
	boom := errors.New("boom")

	p := newProduct("YRN-1")
	err := db.Run(ctx, func(s repository.Store) error {
		require.NoError(t, s.Products.Create(ctx, p))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := db.Store().Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Run(ctx, func(s repository.Store) error { return s.Products.Create(ctx, p) }))
	got, err = db.Store().Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestOrderItemsAreCopied(t *testing.T) {
	s := New().Store()
	ctx := tenant.WithCompany(context.Background(), "c-1")
	o := &entity.Order{
		ID: uuid.NewString(), OrderNumber: "ORD-1", CustomerID: "cu", Status: entity.OrderStatusDraft,
		Items: []entity.OrderItem{{ID: "i1", ProductID: "p1", Quantity: decimal.NewFromInt(1)}},
	}
	require.NoError(t, s.Orders.Create(ctx, o))
	o.Items[0].Quantity = decimal.NewFromInt(99)

	got, err := s.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "c-1", got.Items[0].CompanyID)

	other, err := s.Orders.GetByID(tenant.WithCompany(context.Background(), "c-2"), o.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestListDueAcrossTenants(t *testing.T) {
	s := New().Store()
	now := time.Now()
	for i, c := range []string{"c-1", "c-2"} {
		ctx := tenant.WithCompany(context.Background(), c)
		m := &entity.Machine{ID: uuid.NewString(), Code: "L-1", Status: entity.MachineOperational}
		require.NoError(t, s.Machines.Create(ctx, m))
		require.NoError(t, s.Schedules.Create(ctx, &entity.MaintenanceSchedule{
			ID: uuid.NewString(), MachineID: m.ID, Status: entity.MaintenanceScheduled,
			DueDate: now.Add(time.Duration(i+1) * time.Hour),
		}))
	}
	due, err := s.Schedules.ListDueAcrossTenants(context.Background(), now.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "c-1", due[0].CompanyID)
	assert.Equal(t, "c-2", due[1].CompanyID)
}

func TestUserEmailUniqueAcrossTenants(t *testing.T) {
	s := New().Store()
	u := &entity.User{ID: uuid.NewString(), Email: "ana@telar.co"}
	require.NoError(t, s.Users.Create(tenant.WithCompany(context.Background(), "c-1"), u))
	err := s.Users.Create(tenant.WithCompany(context.Background(), "c-2"), &entity.User{ID: uuid.NewString(), Email: "ANA@telar.co"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	found, err := s.Users.FindByEmailForLogin(context.Background(), "ana@telar.co")
	require.NoError(t, err)
	assert.Equal(t, "c-1", found.CompanyID)
}
