package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var (
	_ repository.InspectionRepository       = (*InspectionRepo)(nil)
	_ repository.ComplianceReportRepository = (*ComplianceRepo)(nil)
)

// InspectionRepo inspecciones y defectos (usable con pool o tx).
type InspectionRepo struct {
	q Querier
}

// NewInspectionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInspectionRepository(q Querier) *InspectionRepo {
	return &InspectionRepo{q: q}
}

const inspectionColumns = `id, company_id, inspection_number, product_id, order_id, lot_number, inspector_id, status, sample_size, notes, inspected_at, created_at, updated_at`

func scanInspection(row pgx.Row) (*entity.Inspection, error) {
	var in entity.Inspection
	var orderID, inspectorID *string
	err := row.Scan(&in.ID, &in.CompanyID, &in.InspectionNumber, &in.ProductID, &orderID, &in.LotNumber, &inspectorID,
		&in.Status, &in.SampleSize, &in.Notes, &in.InspectedAt, &in.CreatedAt, &in.UpdatedAt)
	in.OrderID, in.InspectorID = derefStr(orderID), derefStr(inspectorID)
	return &in, err
}

// Create exige que el producto pertenezca al tenant (ErrNotFound si no).
func (r *InspectionRepo) Create(ctx context.Context, in *entity.Inspection) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	in.CompanyID = companyID
	query := `
		INSERT INTO inspections (` + inspectionColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE EXISTS (SELECT 1 FROM products WHERE company_id = $2 AND id = $4)`
	tag, err := r.q.Exec(ctx, query,
		in.ID, in.CompanyID, in.InspectionNumber, in.ProductID, nullIfEmpty(in.OrderID), in.LotNumber,
		nullIfEmpty(in.InspectorID), in.Status, in.SampleSize, in.Notes, in.InspectedAt, in.CreatedAt, in.UpdatedAt,
	)
	return affected("insert inspection", tag, err)
}

func (r *InspectionRepo) GetByID(ctx context.Context, id string) (*entity.Inspection, error) {
	return r.get(ctx, id, "")
}

func (r *InspectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inspection, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InspectionRepo) get(ctx context.Context, id, lock string) (*entity.Inspection, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	in, err := scanInspection(r.q.QueryRow(ctx, `SELECT `+inspectionColumns+` FROM inspections WHERE `+w.sql()+lock, w.args...))
	return notFound("get inspection", in, err)
}

// Update no modifica el número ni el producto.
func (r *InspectionRepo) Update(ctx context.Context, in *entity.Inspection) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", in.ID)
	query := `UPDATE inspections SET lot_number = ` + w.arg(in.LotNumber) +
		`, order_id = ` + w.arg(nullIfEmpty(in.OrderID)) +
		`, inspector_id = ` + w.arg(nullIfEmpty(in.InspectorID)) +
		`, status = ` + w.arg(in.Status) +
		`, sample_size = ` + w.arg(in.SampleSize) +
		`, notes = ` + w.arg(in.Notes) +
		`, inspected_at = ` + w.arg(in.InspectedAt) +
		`, updated_at = ` + w.arg(in.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update inspection", tag, err)
}

func (r *InspectionRepo) List(ctx context.Context, f repository.InspectionFilter) ([]*entity.Inspection, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	w.period("created_at", f.Period)
	total, err := w.count(ctx, r.q, "inspections")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+inspectionColumns+` FROM inspections WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inspections: %w", err)
	}
	out, err := collect("list inspections", rows, scanInspection)
	return out, total, err
}

// AddDefect exige que la inspección pertenezca al tenant (ErrNotFound si no).
func (r *InspectionRepo) AddDefect(ctx context.Context, d *entity.QualityDefect) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CompanyID = companyID
	tag, err := r.q.Exec(ctx, `
		INSERT INTO quality_defects (id, company_id, inspection_id, defect_type, severity, quantity, description, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM inspections WHERE company_id = $2 AND id = $3)`,
		d.ID, d.CompanyID, d.InspectionID, d.DefectType, d.Severity, d.Quantity, d.Description, d.CreatedAt)
	return affected("insert quality defect", tag, err)
}

// ListDefects en orden de registro.
func (r *InspectionRepo) ListDefects(ctx context.Context, inspectionID string) ([]*entity.QualityDefect, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, inspection_id, defect_type, severity, quantity, description, created_at
		FROM quality_defects WHERE company_id = $1 AND inspection_id = $2
		ORDER BY created_at, id`, companyID, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("list quality defects: %w", err)
	}
	return collect("list quality defects", rows, func(row pgx.Row) (*entity.QualityDefect, error) {
		var d entity.QualityDefect
		err := row.Scan(&d.ID, &d.CompanyID, &d.InspectionID, &d.DefectType, &d.Severity, &d.Quantity, &d.Description, &d.CreatedAt)
		return &d, err
	})
}

func (r *InspectionRepo) DeleteDefect(ctx context.Context, inspectionID, defectID string) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("inspection_id = ?", inspectionID)
	w.add("id = ?", defectID)
	tag, err := r.q.Exec(ctx, `DELETE FROM quality_defects WHERE `+w.sql(), w.args...)
	return affected("delete quality defect", tag, err)
}

// Stats cuenta inspecciones creadas en el periodo y suma los defectos de esas inspecciones.
func (r *InspectionRepo) Stats(ctx context.Context, p repository.Period) (*entity.QualityStats, error) {
	w, err := tenantWhere(ctx, "i.company_id")
	if err != nil {
		return nil, err
	}
	w.period("i.created_at", p)
	out := &entity.QualityStats{DefectsByType: map[string]int{}}
	err = r.q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE i.status = '`+string(entity.InspectionPassed)+`'),
		       COUNT(*) FILTER (WHERE i.status = '`+string(entity.InspectionFailed)+`')
		FROM inspections i WHERE `+w.sql(), w.args...).Scan(&out.TotalInspections, &out.Passed, &out.Failed)
	if err != nil {
		return nil, fmt.Errorf("quality stats: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT d.defect_type, d.severity, SUM(d.quantity)
		FROM quality_defects d JOIN inspections i ON i.id = d.inspection_id
		WHERE `+w.sql()+`
		GROUP BY d.defect_type, d.severity`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("quality stats defects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var defectType, severity string
		var qty int
		if err := rows.Scan(&defectType, &severity, &qty); err != nil {
			return nil, fmt.Errorf("quality stats defects: scan: %w", err)
		}
		out.TotalDefects += qty
		out.DefectsByType[defectType] += qty
		if severity == entity.DefectCritical {
			out.CriticalDefects += qty
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quality stats defects: %w", err)
	}
	return out, nil
}

// ComplianceRepo informes de cumplimiento.
type ComplianceRepo struct {
	q Querier
}

// NewComplianceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComplianceRepository(q Querier) *ComplianceRepo {
	return &ComplianceRepo{q: q}
}

const complianceColumns = `id, company_id, title, standard, period_start, period_end, total_inspections, passed, failed, pass_rate, total_defects, critical_defects, status, generated_by, created_at, updated_at`

func scanCompliance(row pgx.Row) (*entity.ComplianceReport, error) {
	var c entity.ComplianceReport
	var generatedBy *string
	err := row.Scan(&c.ID, &c.CompanyID, &c.Title, &c.Standard, &c.PeriodStart, &c.PeriodEnd, &c.TotalInspections,
		&c.Passed, &c.Failed, &c.PassRate, &c.TotalDefects, &c.CriticalDefects, &c.Status, &generatedBy,
		&c.CreatedAt, &c.UpdatedAt)
	c.GeneratedBy = derefStr(generatedBy)
	return &c, err
}

func (r *ComplianceRepo) Create(ctx context.Context, c *entity.ComplianceReport) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	c.CompanyID = companyID
	query := `
		INSERT INTO compliance_reports (` + complianceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		c.ID, c.CompanyID, c.Title, c.Standard, c.PeriodStart, c.PeriodEnd, c.TotalInspections,
		c.Passed, c.Failed, c.PassRate, c.TotalDefects, c.CriticalDefects, c.Status, nullIfEmpty(c.GeneratedBy),
		c.CreatedAt, c.UpdatedAt,
	)
	return mapErr("insert compliance report", err)
}

func (r *ComplianceRepo) GetByID(ctx context.Context, id string) (*entity.ComplianceReport, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	c, err := scanCompliance(r.q.QueryRow(ctx, `SELECT `+complianceColumns+` FROM compliance_reports WHERE `+w.sql(), w.args...))
	return notFound("get compliance report", c, err)
}

// Update reescribe título, métricas y estado.
func (r *ComplianceRepo) Update(ctx context.Context, c *entity.ComplianceReport) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", c.ID)
	query := `UPDATE compliance_reports SET title = ` + w.arg(c.Title) +
		`, standard = ` + w.arg(c.Standard) +
		`, period_start = ` + w.arg(c.PeriodStart) +
		`, period_end = ` + w.arg(c.PeriodEnd) +
		`, total_inspections = ` + w.arg(c.TotalInspections) +
		`, passed = ` + w.arg(c.Passed) +
		`, failed = ` + w.arg(c.Failed) +
		`, pass_rate = ` + w.arg(c.PassRate) +
		`, total_defects = ` + w.arg(c.TotalDefects) +
		`, critical_defects = ` + w.arg(c.CriticalDefects) +
		`, status = ` + w.arg(c.Status) +
		`, updated_at = ` + w.arg(c.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update compliance report", tag, err)
}

func (r *ComplianceRepo) List(ctx context.Context, page repository.Page) ([]*entity.ComplianceReport, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	total, err := w.count(ctx, r.q, "compliance_reports")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(page)
	rows, err := r.q.Query(ctx, `SELECT `+complianceColumns+` FROM compliance_reports WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list compliance reports: %w", err)
	}
	out, err := collect("list compliance reports", rows, scanCompliance)
	return out, total, err
}
