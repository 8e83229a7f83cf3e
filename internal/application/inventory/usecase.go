package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/inventory"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (IN, OUT, ADJUSTMENT, TRANSFER) con el producto bloqueado (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner ports.TxRunner
	cache    ports.Cache
	log      *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner ports.TxRunner, cache ports.Cache, log *logger.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, cache: cache, log: log}
}

// Movement entrada del motor de inventario.
// Para IN/OUT/ADJUSTMENT: ProductID, LocationID, Type, Quantity; UnitCost obligatorio en IN.
// Para TRANSFER: ProductID, FromLocationID, ToLocationID, Quantity > 0.
// ADJUSTMENT lleva cantidad con signo; el resto cantidad positiva.
type Movement struct {
	ProductID      string
	LocationID     string
	FromLocationID string
	ToLocationID   string
	Type           entity.MovementType
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal
	Reference      string
	Notes          string
	TransactionID  string // vacío = se genera uno
}

// Validate revisa la forma del movimiento sin tocar la base.
func (m Movement) Validate() error {
	switch m.Type {
	case entity.MovementIN, entity.MovementOUT:
		if m.ProductID == "" || m.LocationID == "" || !m.Quantity.IsPositive() {
			return fmt.Errorf("%w: product_id, location_id y quantity > 0 son obligatorios", domain.ErrInvalidInput)
		}
		if m.Type == entity.MovementIN && (m.UnitCost == nil || m.UnitCost.IsNegative()) {
			return fmt.Errorf("%w: unit_cost obligatorio y no negativo en IN", domain.ErrInvalidInput)
		}
	case entity.MovementAdjustment:
		if m.ProductID == "" || m.LocationID == "" || m.Quantity.IsZero() {
			return fmt.Errorf("%w: product_id, location_id y quantity distinta de 0 son obligatorios", domain.ErrInvalidInput)
		}
		if m.UnitCost != nil && m.UnitCost.IsNegative() {
			return fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
		}
	case entity.MovementTransfer:
		if m.ProductID == "" || m.FromLocationID == "" || m.ToLocationID == "" {
			return fmt.Errorf("%w: product_id, from_location_id y to_location_id son obligatorios", domain.ErrInvalidInput)
		}
		if m.FromLocationID == m.ToLocationID || !m.Quantity.IsPositive() {
			return fmt.Errorf("%w: origen y destino distintos y quantity > 0", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, m.Type)
	}
	return nil
}

// RegisterMovement valida, abre la transacción y aplica el movimiento. Devuelve las filas del kardex creadas.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, m Movement) ([]*entity.StockMovement, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entity.StockMovement
	err = uc.txRunner.Run(ctx, func(s repository.Store) error {
		var err error
		out, err = Apply(ctx, s, m, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	ports.Invalidate(ctx, uc.cache, uc.log, companyID)
	return out, nil
}

// Apply ejecuta el movimiento con los repositorios de una transacción abierta por el llamador
// (lo usan los pedidos al despachar). No valida; llamar antes a Validate.
// La fila del producto queda bloqueada hasta el commit: el costo promedio y las filas de stock
// aún inexistentes solo se tocan con ese bloqueo tomado.
func Apply(ctx context.Context, s repository.Store, m Movement, now time.Time) ([]*entity.StockMovement, error) {
	product, err := s.Products.GetForUpdate(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	locations := []string{m.LocationID}
	if m.Type == entity.MovementTransfer {
		locations = []string{m.FromLocationID, m.ToLocationID}
	}
	for _, id := range locations {
		loc, err := s.Locations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.ErrNotFound
		}
	}
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	createdBy := tenant.ActorFrom(ctx).UserID

	switch m.Type {
	case entity.MovementIN:
		return doIN(ctx, s, product, m, now, createdBy)
	case entity.MovementOUT:
		return doOUT(ctx, s, product, m, now, createdBy)
	case entity.MovementAdjustment:
		if m.Quantity.IsPositive() {
			cost := product.Cost
			if m.UnitCost != nil {
				cost = *m.UnitCost
			}
			m.UnitCost = &cost
			return doIN(ctx, s, product, m, now, createdBy)
		}
		m.Quantity = m.Quantity.Neg()
		return doOUT(ctx, s, product, m, now, createdBy)
	case entity.MovementTransfer:
		return doTransfer(ctx, s, product, m, now, createdBy)
	}
	return nil, domain.ErrInvalidInput
}

// doIN: bloquea la fila, recalcula el costo promedio con el stock total, suma y registra.
func doIN(ctx context.Context, s repository.Store, product *entity.Product, m Movement, now time.Time, by string) ([]*entity.StockMovement, error) {
	stock, err := s.Stock.GetForUpdate(ctx, m.ProductID, m.LocationID)
	if err != nil {
		return nil, err
	}
	total, err := s.Stock.TotalByProduct(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	unitCost := *m.UnitCost
	newCost := inventory.CostCalculator(total.Quantity, product.Cost, m.Quantity, unitCost)
	if err := s.Products.UpdateCost(ctx, m.ProductID, newCost); err != nil {
		return nil, err
	}
	stock.Quantity = stock.Quantity.Add(m.Quantity)
	stock.UpdatedAt = now
	if err := s.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	mov := newMovement(m, m.LocationID, m.Quantity, unitCost, now, by)
	if err := s.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{mov}, nil
}

// doOUT: bloquea la fila, exige stock suficiente y registra la salida al costo promedio vigente.
func doOUT(ctx context.Context, s repository.Store, product *entity.Product, m Movement, now time.Time, by string) ([]*entity.StockMovement, error) {
	stock, err := s.Stock.GetForUpdate(ctx, m.ProductID, m.LocationID)
	if err != nil {
		return nil, err
	}
	if stock.Quantity.LessThan(m.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	stock.Quantity = stock.Quantity.Sub(m.Quantity)
	stock.UpdatedAt = now
	if err := s.Stock.Upsert(ctx, stock); err != nil {
		return nil, err
	}
	mov := newMovement(m, m.LocationID, m.Quantity.Neg(), product.Cost, now, by)
	if err := s.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{mov}, nil
}

// doTransfer: resta en origen y suma en destino; dos filas con el mismo TransactionID.
func doTransfer(ctx context.Context, s repository.Store, product *entity.Product, m Movement, now time.Time, by string) ([]*entity.StockMovement, error) {
	origin, err := s.Stock.GetForUpdate(ctx, m.ProductID, m.FromLocationID)
	if err != nil {
		return nil, err
	}
	if origin.Quantity.LessThan(m.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	dest, err := s.Stock.GetForUpdate(ctx, m.ProductID, m.ToLocationID)
	if err != nil {
		return nil, err
	}
	origin.Quantity = origin.Quantity.Sub(m.Quantity)
	dest.Quantity = dest.Quantity.Add(m.Quantity)
	origin.UpdatedAt = now
	dest.UpdatedAt = now
	if err := s.Stock.Upsert(ctx, origin); err != nil {
		return nil, err
	}
	if err := s.Stock.Upsert(ctx, dest); err != nil {
		return nil, err
	}
	outMov := newMovement(m, m.FromLocationID, m.Quantity.Neg(), product.Cost, now, by)
	inMov := newMovement(m, m.ToLocationID, m.Quantity, product.Cost, now, by)
	for _, mov := range []*entity.StockMovement{outMov, inMov} {
		if err := s.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
	}
	return []*entity.StockMovement{outMov, inMov}, nil
}

func newMovement(m Movement, locationID string, qty, unitCost decimal.Decimal, now time.Time, by string) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            uuid.New().String(),
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		LocationID:    locationID,
		Type:          m.Type,
		Quantity:      qty,
		UnitCost:      unitCost,
		TotalCost:     inventory.Value(qty, unitCost),
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     by,
		CreatedAt:     now,
	}
}
