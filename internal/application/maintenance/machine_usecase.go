// Package maintenance gestiona máquinas de planta, su mantenimiento preventivo y los reportes de falla.
package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Deps dependencias comunes de los casos de uso de mantenimiento.
type Deps struct {
	Store    repository.Store
	TxRunner ports.TxRunner
	Events   ports.EventPublisher
	Cache    ports.Cache
	Log      *logger.Logger
}

// MachineUseCase alta, consulta y cambios de estado de máquinas.
type MachineUseCase struct {
	d Deps
}

// NewMachineUseCase construye el caso de uso.
func NewMachineUseCase(d Deps) *MachineUseCase {
	return &MachineUseCase{d: d}
}

// Create da de alta una máquina OPERATIONAL. El código es único por empresa.
func (uc *MachineUseCase) Create(ctx context.Context, in dto.CreateMachineRequest) (*dto.MachineResponse, error) {
	code := strings.TrimSpace(in.Code)
	existing, err := uc.d.Store.Machines.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := checkLocation(ctx, uc.d.Store.Locations, in.LocationID); err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.Machine{
		ID:           uuid.New().String(),
		Code:         code,
		Name:         in.Name,
		Type:         in.Type,
		LocationID:   in.LocationID,
		Manufacturer: in.Manufacturer,
		Model:        in.Model,
		SerialNumber: in.SerialNumber,
		Status:       entity.MachineOperational,
		InstalledAt:  in.InstalledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.d.Store.Machines.Create(ctx, m); err != nil {
		return nil, err
	}
	return toMachineResponse(m), nil
}

// GetByID obtiene una máquina.
func (uc *MachineUseCase) GetByID(ctx context.Context, id string) (*dto.MachineResponse, error) {
	m, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMachineResponse(m), nil
}

// List lista máquinas por estado y tipo.
func (uc *MachineUseCase) List(ctx context.Context, in dto.MachineFilterRequest) (*dto.ListResponse[dto.MachineResponse], error) {
	in.DefaultPage()
	status := entity.MachineStatus(in.Status)
	if status != "" && !entity.MachineTransitions.Known(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, total, err := uc.d.Store.Machines.List(ctx, repository.MachineFilter{
		Page:   repository.Page{Limit: in.Limit, Offset: in.Offset},
		Status: status,
		Type:   in.Type,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MachineResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMachineResponse(m))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Update modifica los datos descriptivos con la fila bloqueada; el estado solo cambia por Transition.
func (uc *MachineUseCase) Update(ctx context.Context, id string, in dto.UpdateMachineRequest) (*dto.MachineResponse, error) {
	if in.LocationID != nil {
		if err := checkLocation(ctx, uc.d.Store.Locations, *in.LocationID); err != nil {
			return nil, err
		}
	}
	var m *entity.Machine
	err := uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Machines.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			cur.Name = *in.Name
		}
		if in.LocationID != nil {
			cur.LocationID = *in.LocationID
		}
		if in.Manufacturer != nil {
			cur.Manufacturer = *in.Manufacturer
		}
		if in.Model != nil {
			cur.Model = *in.Model
		}
		if in.SerialNumber != nil {
			cur.SerialNumber = *in.SerialNumber
		}
		if in.InstalledAt != nil {
			cur.InstalledAt = in.InstalledAt
		}
		cur.UpdatedAt = time.Now()
		m = cur
		return s.Machines.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return toMachineResponse(m), nil
}

// Transition cambia el estado operativo según entity.MachineTransitions.
func (uc *MachineUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.MachineResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	to := entity.MachineStatus(in.Status)
	var (
		m    *entity.Machine
		from entity.MachineStatus
	)
	err = uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Machines.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		m, from = cur, cur.Status
		if cur.Status == to {
			return nil
		}
		if err := entity.MachineTransitions.Validate(cur.Status, to); err != nil {
			return err
		}
		cur.Status = to
		cur.UpdatedAt = time.Now()
		return s.Machines.UpdateStatus(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		ports.Notify(ctx, uc.d.Events, uc.d.Log, ports.Event{
			Type: ports.EventMachineStatusChanged, CompanyID: companyID, EntityID: m.ID,
			From: string(from), To: string(to), Actor: tenant.ActorFrom(ctx).UserID, At: m.UpdatedAt,
		})
		ports.Invalidate(ctx, uc.d.Cache, uc.d.Log, companyID)
	}
	return toMachineResponse(m), nil
}

func (uc *MachineUseCase) get(ctx context.Context, id string) (*entity.Machine, error) {
	m, err := uc.d.Store.Machines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func checkLocation(ctx context.Context, repo repository.LocationRepository, id string) error {
	if id == "" {
		return nil
	}
	loc, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación inexistente", domain.ErrInvalidInput)
	}
	return nil
}

func toMachineResponse(m *entity.Machine) *dto.MachineResponse {
	next := entity.MachineTransitions.Next(m.Status)
	ns := make([]string, 0, len(next))
	for _, s := range next {
		ns = append(ns, string(s))
	}
	return &dto.MachineResponse{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Type:         m.Type,
		LocationID:   m.LocationID,
		Manufacturer: m.Manufacturer,
		Model:        m.Model,
		SerialNumber: m.SerialNumber,
		Status:       string(m.Status),
		InstalledAt:  m.InstalledAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		NextStatus:   ns,
	}
}
