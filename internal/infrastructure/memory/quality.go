package memory

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var (
	_ repository.InspectionRepository       = (*InspectionRepo)(nil)
	_ repository.ComplianceReportRepository = (*ComplianceRepo)(nil)
)

// InspectionRepo inspecciones y defectos.
type InspectionRepo struct{ db *DB }

func (r *InspectionRepo) Create(ctx context.Context, in *entity.Inspection) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if st.inspections.exists(companyID, func(x *entity.Inspection) bool { return x.InspectionNumber == in.InspectionNumber }) {
			return domain.ErrDuplicate
		}
		if _, ok := st.products.get(companyID, in.ProductID); !ok {
			return domain.ErrNotFound
		}
		in.CompanyID = companyID
		st.inspections.put(in.ID, *in)
		return nil
	})
}

func (r *InspectionRepo) GetByID(ctx context.Context, id string) (out *entity.Inspection, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.inspections.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *InspectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inspection, error) {
	return r.GetByID(ctx, id)
}

func (r *InspectionRepo) Update(ctx context.Context, in *entity.Inspection) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.inspections.get(companyID, in.ID)
		if !ok {
			return domain.ErrNotFound
		}
		in.CompanyID, in.InspectionNumber, in.CreatedAt = companyID, prev.InspectionNumber, prev.CreatedAt
		st.inspections.put(in.ID, *in)
		return nil
	})
}

func (r *InspectionRepo) List(ctx context.Context, f repository.InspectionFilter) (out []*entity.Inspection, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.inspections.find(companyID, func(in *entity.Inspection) bool {
			return (f.Status == "" || in.Status == f.Status) &&
				(f.ProductID == "" || in.ProductID == f.ProductID) &&
				f.Period.Contains(in.CreatedAt)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *InspectionRepo) AddDefect(ctx context.Context, d *entity.QualityDefect) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.inspections.get(companyID, d.InspectionID); !ok {
			return domain.ErrNotFound
		}
		d.CompanyID = companyID
		st.defects.put(d.ID, *d)
		return nil
	})
}

// ListDefects en orden de registro.
func (r *InspectionRepo) ListDefects(ctx context.Context, inspectionID string) (out []*entity.QualityDefect, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.defects.find(companyID, func(d *entity.QualityDefect) bool { return d.InspectionID == inspectionID })
		for i := len(all) - 1; i >= 0; i-- {
			out = append(out, all[i])
		}
		return nil
	})
	return out, err
}

func (r *InspectionRepo) DeleteDefect(ctx context.Context, inspectionID, defectID string) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		d, ok := st.defects.get(companyID, defectID)
		if !ok || d.InspectionID != inspectionID {
			return domain.ErrNotFound
		}
		st.defects.delete(defectID)
		return nil
	})
}

func (r *InspectionRepo) Stats(ctx context.Context, p repository.Period) (out *entity.QualityStats, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = &entity.QualityStats{DefectsByType: map[string]int{}}
		inPeriod := map[string]bool{}
		for _, in := range st.inspections.find(companyID, func(in *entity.Inspection) bool { return p.Contains(in.CreatedAt) }) {
			inPeriod[in.ID] = true
			out.TotalInspections++
			switch in.Status {
			case entity.InspectionPassed:
				out.Passed++
			case entity.InspectionFailed:
				out.Failed++
			}
		}
		for _, d := range st.defects.find(companyID, func(d *entity.QualityDefect) bool { return inPeriod[d.InspectionID] }) {
			out.TotalDefects += d.Quantity
			out.DefectsByType[d.DefectType] += d.Quantity
			if d.Severity == entity.DefectCritical {
				out.CriticalDefects += d.Quantity
			}
		}
		return nil
	})
	return out, err
}

// ComplianceRepo informes de cumplimiento.
type ComplianceRepo struct{ db *DB }

func (r *ComplianceRepo) Create(ctx context.Context, rep *entity.ComplianceReport) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		rep.CompanyID = companyID
		st.compliance.put(rep.ID, *rep)
		return nil
	})
}

func (r *ComplianceRepo) GetByID(ctx context.Context, id string) (out *entity.ComplianceReport, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.compliance.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *ComplianceRepo) Update(ctx context.Context, rep *entity.ComplianceReport) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.compliance.get(companyID, rep.ID); !ok {
			return domain.ErrNotFound
		}
		rep.CompanyID = companyID
		st.compliance.put(rep.ID, *rep)
		return nil
	})
}

func (r *ComplianceRepo) List(ctx context.Context, p repository.Page) (out []*entity.ComplianceReport, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, total = paginate(st.compliance.find(companyID, nil), p)
		return nil
	})
	return out, total, err
}
