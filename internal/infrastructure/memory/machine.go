package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var (
	_ repository.MachineRepository             = (*MachineRepo)(nil)
	_ repository.MaintenanceScheduleRepository = (*ScheduleRepo)(nil)
	_ repository.BreakdownRepository           = (*BreakdownRepo)(nil)
)

// MachineRepo máquinas; code único por empresa.
type MachineRepo struct{ db *DB }

func (r *MachineRepo) Create(ctx context.Context, m *entity.Machine) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if st.machines.exists(companyID, func(x *entity.Machine) bool { return x.Code == m.Code }) {
			return domain.ErrDuplicate
		}
		m.CompanyID = companyID
		st.machines.put(m.ID, *m)
		return nil
	})
}

func (r *MachineRepo) GetByID(ctx context.Context, id string) (out *entity.Machine, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.machines.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *MachineRepo) GetForUpdate(ctx context.Context, id string) (*entity.Machine, error) {
	return r.GetByID(ctx, id)
}

func (r *MachineRepo) GetByCode(ctx context.Context, code string) (out *entity.Machine, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		if found := st.machines.find(companyID, func(m *entity.Machine) bool { return m.Code == code }); len(found) > 0 {
			out = found[0]
		}
		return nil
	})
	return out, err
}

func (r *MachineRepo) Update(ctx context.Context, m *entity.Machine) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.machines.get(companyID, m.ID)
		if !ok {
			return domain.ErrNotFound
		}
		m.CompanyID, m.Code, m.CreatedAt, m.Status = companyID, prev.Code, prev.CreatedAt, prev.Status
		st.machines.put(m.ID, *m)
		return nil
	})
}

func (r *MachineRepo) UpdateStatus(ctx context.Context, m *entity.Machine) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.machines.get(companyID, m.ID)
		if !ok {
			return domain.ErrNotFound
		}
		prev.Status = m.Status
		prev.UpdatedAt = m.UpdatedAt
		st.machines.put(prev.ID, *prev)
		return nil
	})
}

func (r *MachineRepo) List(ctx context.Context, f repository.MachineFilter) (out []*entity.Machine, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.machines.find(companyID, func(m *entity.Machine) bool {
			return (f.Status == "" || m.Status == f.Status) && (f.Type == "" || m.Type == f.Type)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *MachineRepo) CountByStatus(ctx context.Context) (out map[entity.MachineStatus]int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = make(map[entity.MachineStatus]int)
		for _, m := range st.machines.find(companyID, nil) {
			out[m.Status]++
		}
		return nil
	})
	return out, err
}

// ScheduleRepo mantenimientos programados.
type ScheduleRepo struct{ db *DB }

func (r *ScheduleRepo) Create(ctx context.Context, s *entity.MaintenanceSchedule) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.machines.get(companyID, s.MachineID); !ok {
			return domain.ErrNotFound
		}
		s.CompanyID = companyID
		st.schedules.put(s.ID, *s)
		return nil
	})
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (out *entity.MaintenanceSchedule, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.schedules.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *ScheduleRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaintenanceSchedule, error) {
	return r.GetByID(ctx, id)
}

func (r *ScheduleRepo) Update(ctx context.Context, s *entity.MaintenanceSchedule) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.schedules.get(companyID, s.ID)
		if !ok {
			return domain.ErrNotFound
		}
		s.CompanyID, s.MachineID, s.CreatedAt = companyID, prev.MachineID, prev.CreatedAt
		st.schedules.put(s.ID, *s)
		return nil
	})
}

// List ordena por fecha de vencimiento ascendente.
func (r *ScheduleRepo) List(ctx context.Context, f repository.ScheduleFilter) (out []*entity.MaintenanceSchedule, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.schedules.find(companyID, func(s *entity.MaintenanceSchedule) bool {
			return (f.MachineID == "" || s.MachineID == f.MachineID) &&
				(f.Status == "" || s.Status == f.Status) &&
				(f.DueBefore == nil || s.DueDate.Before(*f.DueBefore))
		})
		sortByDue(all)
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *ScheduleRepo) ListDueAcrossTenants(_ context.Context, before time.Time) ([]*entity.MaintenanceSchedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []*entity.MaintenanceSchedule
	for _, s := range r.db.st.schedules.rows {
		if s.Status == entity.MaintenanceScheduled && s.DueDate.Before(before) {
			out = append(out, &s)
		}
	}
	sortByDue(out)
	return out, nil
}

func sortByDue(items []*entity.MaintenanceSchedule) {
	slices.SortStableFunc(items, func(a, b *entity.MaintenanceSchedule) int { return a.DueDate.Compare(b.DueDate) })
}

// BreakdownRepo reportes de falla.
type BreakdownRepo struct{ db *DB }

func (r *BreakdownRepo) Create(ctx context.Context, b *entity.BreakdownReport) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.machines.get(companyID, b.MachineID); !ok {
			return domain.ErrNotFound
		}
		b.CompanyID = companyID
		st.breakdowns.put(b.ID, *b)
		return nil
	})
}

func (r *BreakdownRepo) GetByID(ctx context.Context, id string) (out *entity.BreakdownReport, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.breakdowns.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *BreakdownRepo) GetForUpdate(ctx context.Context, id string) (*entity.BreakdownReport, error) {
	return r.GetByID(ctx, id)
}

func (r *BreakdownRepo) Update(ctx context.Context, b *entity.BreakdownReport) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.breakdowns.get(companyID, b.ID)
		if !ok {
			return domain.ErrNotFound
		}
		b.CompanyID, b.MachineID, b.CreatedAt = companyID, prev.MachineID, prev.CreatedAt
		st.breakdowns.put(b.ID, *b)
		return nil
	})
}

func (r *BreakdownRepo) List(ctx context.Context, f repository.BreakdownFilter) (out []*entity.BreakdownReport, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.breakdowns.find(companyID, func(b *entity.BreakdownReport) bool {
			return (f.MachineID == "" || b.MachineID == f.MachineID) && (f.Status == "" || b.Status == f.Status)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *BreakdownRepo) CountOpen(ctx context.Context) (n int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		n = len(st.breakdowns.find(companyID, func(b *entity.BreakdownReport) bool { return b.Status != entity.BreakdownResolved }))
		return nil
	})
	return n, err
}
