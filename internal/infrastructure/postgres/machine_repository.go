package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var (
	_ repository.MachineRepository             = (*MachineRepo)(nil)
	_ repository.MaintenanceScheduleRepository = (*ScheduleRepo)(nil)
	_ repository.BreakdownRepository           = (*BreakdownRepo)(nil)
)

// MachineRepo máquinas de planta; code único por empresa.
type MachineRepo struct {
	q Querier
}

// NewMachineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMachineRepository(q Querier) *MachineRepo {
	return &MachineRepo{q: q}
}

const machineColumns = `id, company_id, code, name, type, location_id, manufacturer, model, serial_number, status, installed_at, created_at, updated_at`

func scanMachine(row pgx.Row) (*entity.Machine, error) {
	var m entity.Machine
	var locationID *string
	err := row.Scan(&m.ID, &m.CompanyID, &m.Code, &m.Name, &m.Type, &locationID, &m.Manufacturer, &m.Model,
		&m.SerialNumber, &m.Status, &m.InstalledAt, &m.CreatedAt, &m.UpdatedAt)
	m.LocationID = derefStr(locationID)
	return &m, err
}

func (r *MachineRepo) Create(ctx context.Context, m *entity.Machine) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	m.CompanyID = companyID
	query := `
		INSERT INTO machines (` + machineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Code, m.Name, m.Type, nullIfEmpty(m.LocationID), m.Manufacturer, m.Model,
		m.SerialNumber, m.Status, m.InstalledAt, m.CreatedAt, m.UpdatedAt,
	)
	return mapErr("insert machine", err)
}

func (r *MachineRepo) GetByID(ctx context.Context, id string) (*entity.Machine, error) {
	return r.get(ctx, "id", id, "")
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *MachineRepo) GetForUpdate(ctx context.Context, id string) (*entity.Machine, error) {
	return r.get(ctx, "id", id, " FOR UPDATE")
}

func (r *MachineRepo) GetByCode(ctx context.Context, code string) (*entity.Machine, error) {
	return r.get(ctx, "code", code, "")
}

func (r *MachineRepo) get(ctx context.Context, column, value, lock string) (*entity.Machine, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add(column+" = ?", value)
	m, err := scanMachine(r.q.QueryRow(ctx, `SELECT `+machineColumns+` FROM machines WHERE `+w.sql()+lock, w.args...))
	return notFound("get machine", m, err)
}

// Update no modifica code ni status.
func (r *MachineRepo) Update(ctx context.Context, m *entity.Machine) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", m.ID)
	query := `UPDATE machines SET name = ` + w.arg(m.Name) +
		`, type = ` + w.arg(m.Type) +
		`, location_id = ` + w.arg(nullIfEmpty(m.LocationID)) +
		`, manufacturer = ` + w.arg(m.Manufacturer) +
		`, model = ` + w.arg(m.Model) +
		`, serial_number = ` + w.arg(m.SerialNumber) +
		`, installed_at = ` + w.arg(m.InstalledAt) +
		`, updated_at = ` + w.arg(m.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update machine", tag, err)
}

func (r *MachineRepo) UpdateStatus(ctx context.Context, m *entity.Machine) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", m.ID)
	query := `UPDATE machines SET status = ` + w.arg(m.Status) + `, updated_at = ` + w.arg(m.UpdatedAt) + ` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update machine status", tag, err)
}

func (r *MachineRepo) List(ctx context.Context, f repository.MachineFilter) ([]*entity.Machine, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	total, err := w.count(ctx, r.q, "machines")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+machineColumns+` FROM machines WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list machines: %w", err)
	}
	out, err := collect("list machines", rows, scanMachine)
	return out, total, err
}

func (r *MachineRepo) CountByStatus(ctx context.Context) (map[entity.MachineStatus]int, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return countByStatus[entity.MachineStatus](ctx, r.q, "machines", companyID)
}

// ScheduleRepo mantenimientos programados.
type ScheduleRepo struct {
	q Querier
}

// NewScheduleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewScheduleRepository(q Querier) *ScheduleRepo {
	return &ScheduleRepo{q: q}
}

const scheduleColumns = `id, company_id, machine_id, title, description, interval_days, due_date, status, assigned_to, completed_at, notes, created_at, updated_at`

func scanSchedule(row pgx.Row) (*entity.MaintenanceSchedule, error) {
	var s entity.MaintenanceSchedule
	var assignedTo *string
	err := row.Scan(&s.ID, &s.CompanyID, &s.MachineID, &s.Title, &s.Description, &s.IntervalDays, &s.DueDate,
		&s.Status, &assignedTo, &s.CompletedAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	s.AssignedTo = derefStr(assignedTo)
	return &s, err
}

// Create exige que la máquina pertenezca al tenant (ErrNotFound si no).
func (r *ScheduleRepo) Create(ctx context.Context, s *entity.MaintenanceSchedule) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	s.CompanyID = companyID
	query := `
		INSERT INTO maintenance_schedules (` + scheduleColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE EXISTS (SELECT 1 FROM machines WHERE company_id = $2 AND id = $3)`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.MachineID, s.Title, s.Description, s.IntervalDays, s.DueDate,
		s.Status, nullIfEmpty(s.AssignedTo), s.CompletedAt, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	return affected("insert maintenance schedule", tag, err)
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*entity.MaintenanceSchedule, error) {
	return r.get(ctx, id, "")
}

func (r *ScheduleRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaintenanceSchedule, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ScheduleRepo) get(ctx context.Context, id, lock string) (*entity.MaintenanceSchedule, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	s, err := scanSchedule(r.q.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM maintenance_schedules WHERE `+w.sql()+lock, w.args...))
	return notFound("get maintenance schedule", s, err)
}

// Update no modifica la máquina.
func (r *ScheduleRepo) Update(ctx context.Context, s *entity.MaintenanceSchedule) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", s.ID)
	query := `UPDATE maintenance_schedules SET title = ` + w.arg(s.Title) +
		`, description = ` + w.arg(s.Description) +
		`, interval_days = ` + w.arg(s.IntervalDays) +
		`, due_date = ` + w.arg(s.DueDate) +
		`, status = ` + w.arg(s.Status) +
		`, assigned_to = ` + w.arg(nullIfEmpty(s.AssignedTo)) +
		`, completed_at = ` + w.arg(s.CompletedAt) +
		`, notes = ` + w.arg(s.Notes) +
		`, updated_at = ` + w.arg(s.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update maintenance schedule", tag, err)
}

// List ordena por fecha de vencimiento ascendente.
func (r *ScheduleRepo) List(ctx context.Context, f repository.ScheduleFilter) ([]*entity.MaintenanceSchedule, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.MachineID != "" {
		w.add("machine_id = ?", f.MachineID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.DueBefore != nil {
		w.add("due_date < ?", *f.DueBefore)
	}
	total, err := w.count(ctx, r.q, "maintenance_schedules")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+scheduleColumns+` FROM maintenance_schedules WHERE `+w.sql()+` ORDER BY due_date, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list maintenance schedules: %w", err)
	}
	out, err := collect("list maintenance schedules", rows, scanSchedule)
	return out, total, err
}

// ListDueAcrossTenants método de sistema: no filtra por empresa.
func (r *ScheduleRepo) ListDueAcrossTenants(ctx context.Context, before time.Time) ([]*entity.MaintenanceSchedule, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+scheduleColumns+` FROM maintenance_schedules
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date, id`, entity.MaintenanceScheduled, before)
	if err != nil {
		return nil, fmt.Errorf("list due maintenance: %w", err)
	}
	return collect("list due maintenance", rows, scanSchedule)
}

// BreakdownRepo reportes de falla.
type BreakdownRepo struct {
	q Querier
}

// NewBreakdownRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBreakdownRepository(q Querier) *BreakdownRepo {
	return &BreakdownRepo{q: q}
}

const breakdownColumns = `id, company_id, machine_id, reported_by, description, severity, status, reported_at, resolved_at, resolution, downtime_minutes, created_at, updated_at`

func scanBreakdown(row pgx.Row) (*entity.BreakdownReport, error) {
	var b entity.BreakdownReport
	var reportedBy *string
	err := row.Scan(&b.ID, &b.CompanyID, &b.MachineID, &reportedBy, &b.Description, &b.Severity, &b.Status,
		&b.ReportedAt, &b.ResolvedAt, &b.Resolution, &b.DowntimeMinutes, &b.CreatedAt, &b.UpdatedAt)
	b.ReportedBy = derefStr(reportedBy)
	return &b, err
}

// Create exige que la máquina pertenezca al tenant (ErrNotFound si no).
func (r *BreakdownRepo) Create(ctx context.Context, b *entity.BreakdownReport) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	b.CompanyID = companyID
	query := `
		INSERT INTO breakdown_reports (` + breakdownColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE EXISTS (SELECT 1 FROM machines WHERE company_id = $2 AND id = $3)`
	tag, err := r.q.Exec(ctx, query,
		b.ID, b.CompanyID, b.MachineID, nullIfEmpty(b.ReportedBy), b.Description, b.Severity, b.Status,
		b.ReportedAt, b.ResolvedAt, b.Resolution, b.DowntimeMinutes, b.CreatedAt, b.UpdatedAt,
	)
	return affected("insert breakdown report", tag, err)
}

func (r *BreakdownRepo) GetByID(ctx context.Context, id string) (*entity.BreakdownReport, error) {
	return r.get(ctx, id, "")
}

func (r *BreakdownRepo) GetForUpdate(ctx context.Context, id string) (*entity.BreakdownReport, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *BreakdownRepo) get(ctx context.Context, id, lock string) (*entity.BreakdownReport, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	b, err := scanBreakdown(r.q.QueryRow(ctx, `SELECT `+breakdownColumns+` FROM breakdown_reports WHERE `+w.sql()+lock, w.args...))
	return notFound("get breakdown report", b, err)
}

func (r *BreakdownRepo) Update(ctx context.Context, b *entity.BreakdownReport) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", b.ID)
	query := `UPDATE breakdown_reports SET description = ` + w.arg(b.Description) +
		`, severity = ` + w.arg(b.Severity) +
		`, status = ` + w.arg(b.Status) +
		`, resolved_at = ` + w.arg(b.ResolvedAt) +
		`, resolution = ` + w.arg(b.Resolution) +
		`, downtime_minutes = ` + w.arg(b.DowntimeMinutes) +
		`, updated_at = ` + w.arg(b.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update breakdown report", tag, err)
}

func (r *BreakdownRepo) List(ctx context.Context, f repository.BreakdownFilter) ([]*entity.BreakdownReport, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.MachineID != "" {
		w.add("machine_id = ?", f.MachineID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	total, err := w.count(ctx, r.q, "breakdown_reports")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+breakdownColumns+` FROM breakdown_reports WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list breakdown reports: %w", err)
	}
	out, err := collect("list breakdown reports", rows, scanBreakdown)
	return out, total, err
}

// CountOpen fallas no resueltas (OPEN o IN_PROGRESS).
func (r *BreakdownRepo) CountOpen(ctx context.Context) (int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return 0, err
	}
	w.add("status <> ?", entity.BreakdownResolved)
	return w.count(ctx, r.q, "breakdown_reports")
}
