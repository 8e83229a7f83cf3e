package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Cost y stock se manejan vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto. Cost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Price.IsNegative() || in.ReorderPoint.IsNegative() {
		return nil, fmt.Errorf("%w: price y reorder_point no pueden ser negativos", domain.ErrInvalidInput)
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          strings.TrimSpace(in.SKU),
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Unit:         in.Unit,
		Price:        in.Price,
		Cost:         decimal.Zero,
		ReorderPoint: in.ReorderPoint,
		Attributes:   in.Attributes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.ReorderPoint != nil {
		if in.ReorderPoint.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderPoint = *in.ReorderPoint
	}
	if len(in.Attributes) > 0 {
		product.Attributes = in.Attributes
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos de la empresa con búsqueda por nombre/SKU y filtro por categoría.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ListResponse[dto.ProductResponse], error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Page:     repository.Page{Limit: in.Limit, Offset: in.Offset},
		Search:   strings.TrimSpace(in.Search),
		Category: in.Category,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Delete elimina un producto. Si tiene movimientos o stock el repositorio devuelve ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// Columnas aceptadas por la importación; sku y name son obligatorias.
var importColumns = []string{"sku", "name", "description", "category", "unit", "price", "reorder_point"}

// ImportCSV crea o actualiza productos por SKU desde un CSV exportado por sistemas legados.
// Acepta UTF-8 (con o sin BOM) o Windows-1252/Latin-1, separador coma o punto y coma.
// Las filas inválidas se reportan y no detienen la importación.
func (uc *ProductUseCase) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportProductsResponse, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, err := decodeLegacyText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: codificación no soportada", domain.ErrInvalidInput)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: CSV sin cabecera", domain.ErrInvalidInput)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["sku"]; !ok {
		return nil, fmt.Errorf("%w: falta la columna sku", domain.ErrInvalidInput)
	}
	if _, ok := idx["name"]; !ok {
		return nil, fmt.Errorf("%w: falta la columna name", domain.ErrInvalidInput)
	}

	res := &dto.ImportProductsResponse{Errors: []dto.ImportError{}}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, dto.ImportError{Line: line, Message: err.Error()})
			continue
		}
		row := make(map[string]string, len(importColumns))
		for _, col := range importColumns {
			if i, ok := idx[col]; ok && i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		created, err := uc.importRow(ctx, row)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicate) {
				res.Errors = append(res.Errors, dto.ImportError{Line: line, SKU: row["sku"], Message: err.Error()})
				continue
			}
			return nil, err
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func (uc *ProductUseCase) importRow(ctx context.Context, row map[string]string) (bool, error) {
	sku, name := row["sku"], row["name"]
	if sku == "" || name == "" {
		return false, fmt.Errorf("%w: sku y name son obligatorios", domain.ErrInvalidInput)
	}
	category := strings.ToLower(row["category"])
	if category == "" {
		category = entity.CategoryFabric
	}
	if !validCategory(category) {
		return false, fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, category)
	}
	unit := strings.ToLower(row["unit"])
	if unit == "" {
		unit = entity.UnitMeter
	}
	if !validUnit(unit) {
		return false, fmt.Errorf("%w: unidad %q", domain.ErrInvalidInput, unit)
	}
	price, err := parseDecimal(row["price"])
	if err != nil {
		return false, fmt.Errorf("%w: price %q", domain.ErrInvalidInput, row["price"])
	}
	reorder, err := parseDecimal(row["reorder_point"])
	if err != nil {
		return false, fmt.Errorf("%w: reorder_point %q", domain.ErrInvalidInput, row["reorder_point"])
	}

	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if existing != nil {
		existing.Name = name
		if d := row["description"]; d != "" {
			existing.Description = d
		}
		existing.Category = category
		existing.Unit = unit
		existing.Price = price
		existing.ReorderPoint = reorder
		existing.UpdatedAt = now
		return false, uc.repo.Update(ctx, existing)
	}
	return true, uc.repo.Create(ctx, &entity.Product{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         name,
		Description:  row["description"],
		Category:     category,
		Unit:         unit,
		Price:        price,
		Cost:         decimal.Zero,
		ReorderPoint: reorder,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// decodeLegacyText devuelve el texto en UTF-8. Lo que no es UTF-8 válido se interpreta como Windows-1252.
func decodeLegacyText(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return raw, nil
	}
	return charmap.Windows1252.NewDecoder().Bytes(raw)
}

func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

// parseDecimal acepta "1234.5" y la coma decimal de las planillas locales ("1234,5").
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return d, nil
}

func validCategory(c string) bool {
	switch c {
	case entity.CategoryFabric, entity.CategoryYarn, entity.CategoryGarment, entity.CategoryAccessory, entity.CategoryChemical:
		return true
	}
	return false
}

func validUnit(u string) bool {
	switch u {
	case entity.UnitMeter, entity.UnitKg, entity.UnitPiece, entity.UnitRoll:
		return true
	}
	return false
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Unit:         p.Unit,
		Price:        p.Price,
		Cost:         p.Cost,
		ReorderPoint: p.ReorderPoint,
		Attributes:   p.Attributes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
