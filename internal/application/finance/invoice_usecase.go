// Package finance implementa cuentas por cobrar (facturas de venta) y cuentas por pagar
// (facturas de proveedor) con sus flujos de estado.
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Deps dependencias de los casos de uso de finanzas.
type Deps struct {
	Store    repository.Store
	TxRunner ports.TxRunner
	Events   ports.EventPublisher
	Cache    ports.Cache
	PDF      ports.PDFRenderer
	Log      *logger.Logger
}

// InvoiceUseCase facturas de venta.
type InvoiceUseCase struct {
	d Deps
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(d Deps) *InvoiceUseCase {
	return &InvoiceUseCase{d: d}
}

var hundred = decimal.NewFromInt(100)

// normalizeRate acepta 0.19 o 19 para el 19 %. Menor que 1 es fracción; desde 1 es porcentaje.
func normalizeRate(rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: tax_rate negativo", domain.ErrInvalidInput)
	}
	if rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		rate = rate.Div(hundred)
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%w: tax_rate fuera de rango", domain.ErrInvalidInput)
	}
	return rate, nil
}

// Create crea una factura DRAFT, con líneas manuales o copiadas de un pedido confirmado.
// Un pedido con una factura no anulada no se vuelve a facturar (ErrConflict).
// El número INV-... se asigna aquí; la factura no mueve inventario.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		InvoiceNumber: entity.NewDocumentNumber(entity.PrefixInvoice, now),
		CustomerID:    in.CustomerID,
		IssueDate:     now,
		DueDate:       in.DueDate,
		Status:        entity.InvoiceDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.IssueDate != nil {
		inv.IssueDate = in.IssueDate.UTC()
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.IssueDate) {
		return nil, fmt.Errorf("%w: due_date anterior a issue_date", domain.ErrInvalidInput)
	}

	var err error
	switch {
	case in.OrderID != "":
		err = uc.itemsFromOrder(ctx, inv, in)
	case len(in.Items) > 0:
		err = uc.itemsFromRequest(ctx, inv, in.Items)
	default:
		err = fmt.Errorf("%w: se requieren items u order_id", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	customer, err := uc.d.Store.Customers.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
	}

	inv.Recalculate()
	err = uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		if inv.OrderID != "" {
			// el bloqueo del pedido serializa dos facturaciones simultáneas del mismo pedido
			if _, err := s.Orders.GetForUpdate(ctx, inv.OrderID); err != nil {
				return err
			}
			active, err := s.Invoices.HasActiveForOrder(ctx, inv.OrderID)
			if err != nil {
				return err
			}
			if active {
				return fmt.Errorf("%w: el pedido ya tiene una factura activa", domain.ErrConflict)
			}
		}
		return s.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.d.Log.Info().Str("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).
		Str("total", inv.Total.StringFixed(2)).Msg("factura creada")
	return toInvoiceResponse(inv), nil
}

func (uc *InvoiceUseCase) itemsFromOrder(ctx context.Context, inv *entity.Invoice, in dto.CreateInvoiceRequest) error {
	if len(in.Items) > 0 {
		return fmt.Errorf("%w: items y order_id son excluyentes", domain.ErrInvalidInput)
	}
	order, err := uc.d.Store.Orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: pedido inexistente", domain.ErrInvalidInput)
	}
	if order.Status == entity.OrderStatusDraft || order.Status == entity.OrderStatusCancelled {
		return fmt.Errorf("%w: el pedido está en %s", domain.ErrConflict, order.Status)
	}
	if in.CustomerID != "" && in.CustomerID != order.CustomerID {
		return fmt.Errorf("%w: el cliente no coincide con el pedido", domain.ErrInvalidInput)
	}
	rate, err := normalizeRate(in.TaxRate)
	if err != nil {
		return err
	}
	inv.OrderID = order.ID
	inv.CustomerID = order.CustomerID
	for _, it := range order.Items {
		desc := it.ProductID
		if p, err := uc.d.Store.Products.GetByID(ctx, it.ProductID); err != nil {
			return err
		} else if p != nil {
			desc = p.Name
		}
		inv.Items = append(inv.Items, entity.InvoiceItem{
			ID:          uuid.New().String(),
			ProductID:   it.ProductID,
			Description: desc,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     rate,
		})
	}
	return nil
}

func (uc *InvoiceUseCase) itemsFromRequest(ctx context.Context, inv *entity.Invoice, items []dto.InvoiceItemRequest) error {
	if inv.CustomerID == "" {
		return fmt.Errorf("%w: customer_id requerido", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("%w: items[%d].quantity debe ser > 0", domain.ErrInvalidInput, i)
		}
		rate, err := normalizeRate(it.TaxRate)
		if err != nil {
			return err
		}
		line := entity.InvoiceItem{
			ID:          uuid.New().String(),
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			TaxRate:     rate,
		}
		if it.ProductID != "" {
			p, err := uc.d.Store.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: items[%d] producto inexistente", domain.ErrInvalidInput, i)
			}
			line.UnitPrice = p.Price
			if line.Description == "" {
				line.Description = p.Name
			}
		}
		if it.UnitPrice != nil {
			line.UnitPrice = *it.UnitPrice
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: items[%d].unit_price negativo", domain.ErrInvalidInput, i)
		}
		if it.ProductID == "" && (line.Description == "" || it.UnitPrice == nil) {
			return fmt.Errorf("%w: items[%d] sin producto requiere description y unit_price", domain.ErrInvalidInput, i)
		}
		inv.Items = append(inv.Items, line)
	}
	return nil
}

// GetByID devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// List filtra por estado, cliente y fecha de emisión.
func (uc *InvoiceUseCase) List(ctx context.Context, in dto.InvoiceFilterRequest) (*dto.ListResponse[dto.InvoiceResponse], error) {
	in.DefaultPage()
	from, to, err := in.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	status := entity.InvoiceStatus(in.Status)
	if status != "" && !entity.InvoiceTransitions.Known(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, total, err := uc.d.Store.Invoices.List(ctx, repository.InvoiceFilter{
		Page:       repository.Page{Limit: in.Limit, Offset: in.Offset},
		Period:     repository.Period{From: from, To: to},
		Status:     status,
		CustomerID: in.CustomerID,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Transition avanza la factura. PAID registra paid_at; los reportes del tenant se invalidan.
func (uc *InvoiceUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.InvoiceResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	to := entity.InvoiceStatus(in.Status)
	var (
		inv  *entity.Invoice
		from entity.InvoiceStatus
	)
	err = uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		inv, from = cur, cur.Status
		if cur.Status == to {
			return nil
		}
		if err := entity.InvoiceTransitions.Validate(cur.Status, to); err != nil {
			return err
		}
		now := time.Now()
		cur.Status = to
		cur.UpdatedAt = now
		if to == entity.InvoicePaid {
			cur.PaidAt = &now
		}
		return s.Invoices.UpdateStatus(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		ports.Notify(ctx, uc.d.Events, uc.d.Log, ports.Event{
			Type: ports.EventInvoiceStatusChanged, CompanyID: companyID, EntityID: inv.ID,
			From: string(from), To: string(to), Actor: tenant.ActorFrom(ctx).UserID, At: inv.UpdatedAt,
		})
		ports.Invalidate(ctx, uc.d.Cache, uc.d.Log, companyID)
	}
	return toInvoiceResponse(inv), nil
}

// PDF genera la representación gráfica de la factura con los nombres de producto resueltos.
func (uc *InvoiceUseCase) PDF(ctx context.Context, id string) ([]byte, string, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, "", err
	}
	inv, err := uc.get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.d.Store.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	customer, err := uc.d.Store.Customers.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if customer == nil {
		return nil, "", domain.ErrNotFound
	}

	lines := make([]ports.InvoiceLine, 0, len(inv.Items))
	for _, it := range inv.Items {
		name := it.Description
		if it.ProductID != "" {
			if p, err := uc.d.Store.Products.GetByID(ctx, it.ProductID); err == nil && p != nil {
				name = p.Name
			}
		}
		lines = append(lines, ports.InvoiceLine{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Subtotal:    it.Subtotal,
		})
	}
	pdf, err := uc.d.PDF.InvoicePDF(ctx, ports.InvoiceDocument{
		Invoice:  inv,
		Company:  company,
		Customer: customer,
		Lines:    lines,
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, inv.InvoiceNumber + ".pdf", nil
}

func (uc *InvoiceUseCase) get(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.d.Store.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		OrderID:       inv.OrderID,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		Total:         inv.Total,
		Status:        string(inv.Status),
		PaidAt:        inv.PaidAt,
		CreatedAt:     inv.CreatedAt,
		NextStatus:    statusStrings(entity.InvoiceTransitions.Next(inv.Status)),
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Subtotal:    it.Subtotal,
			TaxAmount:   it.TaxAmount,
		})
	}
	return out
}

func statusStrings[S ~string](in []S) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
