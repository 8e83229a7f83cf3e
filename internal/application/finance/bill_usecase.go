package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var billCategories = map[string]bool{
	entity.BillRawMaterial: true,
	entity.BillUtilities:   true,
	entity.BillPayroll:     true,
	entity.BillMaintenance: true,
	entity.BillLogistics:   true,
	entity.BillOther:       true,
}

// BillUseCase cuentas por pagar.
type BillUseCase struct {
	d Deps
}

// NewBillUseCase construye el caso de uso.
func NewBillUseCase(d Deps) *BillUseCase {
	return &BillUseCase{d: d}
}

// Create registra una cuenta por pagar en DRAFT; bill_number es único por empresa.
func (uc *BillUseCase) Create(ctx context.Context, in dto.CreateBillRequest) (*dto.BillResponse, error) {
	if in.BillNumber == "" || in.VendorName == "" {
		return nil, fmt.Errorf("%w: bill_number y vendor_name requeridos", domain.ErrInvalidInput)
	}
	now := time.Now()
	b := &entity.Bill{
		ID:         uuid.New().String(),
		BillNumber: in.BillNumber,
		VendorName: in.VendorName,
		Category:   in.Category,
		IssueDate:  in.IssueDate.UTC(),
		DueDate:    in.DueDate,
		Subtotal:   in.Subtotal,
		TaxTotal:   in.TaxTotal,
		Status:     entity.BillDraft,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if b.IssueDate.IsZero() {
		b.IssueDate = now
	}
	if err := validateBill(b); err != nil {
		return nil, err
	}
	if err := uc.d.Store.Bills.Create(ctx, b); err != nil {
		return nil, err
	}
	return toBillResponse(b), nil
}

// GetByID devuelve la cuenta por pagar.
func (uc *BillUseCase) GetByID(ctx context.Context, id string) (*dto.BillResponse, error) {
	b, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBillResponse(b), nil
}

// List filtra por estado, categoría y fecha de emisión.
func (uc *BillUseCase) List(ctx context.Context, in dto.BillFilterRequest) (*dto.ListResponse[dto.BillResponse], error) {
	in.DefaultPage()
	from, to, err := in.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	status := entity.BillStatus(in.Status)
	if status != "" && !entity.BillTransitions.Known(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if in.Category != "" && !billCategories[in.Category] {
		return nil, fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, in.Category)
	}
	list, total, err := uc.d.Store.Bills.List(ctx, repository.BillFilter{
		Page:     repository.Page{Limit: in.Limit, Offset: in.Offset},
		Period:   repository.Period{From: from, To: to},
		Status:   status,
		Category: in.Category,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.BillResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBillResponse(b))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Update modifica una cuenta en DRAFT; en otro estado devuelve ErrNotEditable.
func (uc *BillUseCase) Update(ctx context.Context, id string, in dto.UpdateBillRequest) (*dto.BillResponse, error) {
	var b *entity.Bill
	err := uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Bills.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if cur.Status != entity.BillDraft {
			return domain.ErrNotEditable
		}
		if in.VendorName != nil {
			cur.VendorName = *in.VendorName
		}
		if in.Category != nil {
			cur.Category = *in.Category
		}
		if in.DueDate != nil {
			cur.DueDate = in.DueDate
		}
		if in.Subtotal != nil {
			cur.Subtotal = *in.Subtotal
		}
		if in.TaxTotal != nil {
			cur.TaxTotal = *in.TaxTotal
		}
		if in.Notes != nil {
			cur.Notes = *in.Notes
		}
		if err := validateBill(cur); err != nil {
			return err
		}
		cur.UpdatedAt = time.Now()
		b = cur
		return s.Bills.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return toBillResponse(b), nil
}

// Transition aprueba, paga o anula la cuenta. PAID registra paid_at.
func (uc *BillUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.BillResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	to := entity.BillStatus(in.Status)
	var (
		b    *entity.Bill
		from entity.BillStatus
	)
	err = uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Bills.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		b, from = cur, cur.Status
		if cur.Status == to {
			return nil
		}
		if err := entity.BillTransitions.Validate(cur.Status, to); err != nil {
			return err
		}
		now := time.Now()
		cur.Status = to
		cur.UpdatedAt = now
		if to == entity.BillPaid {
			cur.PaidAt = &now
		}
		if in.Note != "" {
			cur.Notes = in.Note
		}
		return s.Bills.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		ports.Invalidate(ctx, uc.d.Cache, uc.d.Log, companyID)
		uc.d.Log.Info().Str("bill_id", b.ID).Str("from", string(from)).Str("to", string(to)).
			Msg("cuenta por pagar actualizada")
	}
	return toBillResponse(b), nil
}

func (uc *BillUseCase) get(ctx context.Context, id string) (*entity.Bill, error) {
	b, err := uc.d.Store.Bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// validateBill revisa categoría, montos y fechas y recalcula el total.
func validateBill(b *entity.Bill) error {
	if !billCategories[b.Category] {
		return fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, b.Category)
	}
	if b.Subtotal.IsNegative() || b.TaxTotal.IsNegative() {
		return fmt.Errorf("%w: montos negativos", domain.ErrInvalidInput)
	}
	if b.DueDate != nil && b.DueDate.Before(b.IssueDate) {
		return fmt.Errorf("%w: due_date anterior a issue_date", domain.ErrInvalidInput)
	}
	b.Total = b.Subtotal.Add(b.TaxTotal)
	return nil
}

func toBillResponse(b *entity.Bill) *dto.BillResponse {
	return &dto.BillResponse{
		ID:         b.ID,
		BillNumber: b.BillNumber,
		VendorName: b.VendorName,
		Category:   b.Category,
		IssueDate:  b.IssueDate,
		DueDate:    b.DueDate,
		Subtotal:   b.Subtotal,
		TaxTotal:   b.TaxTotal,
		Total:      b.Total,
		Status:     string(b.Status),
		PaidAt:     b.PaidAt,
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		NextStatus: statusStrings(entity.BillTransitions.Next(b.Status)),
	}
}
