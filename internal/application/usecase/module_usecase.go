package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// ModuleService verifica y administra los módulos activos de una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	companyRepo repository.CompanyRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(companyRepo repository.CompanyRepository) *ModuleService {
	return &ModuleService{companyRepo: companyRepo}
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Devuelve error solo ante fallos de infraestructura.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	return s.companyRepo.HasActiveModule(ctx, companyID, moduleName)
}

// List devuelve los módulos de la empresa del tenant.
func (s *ModuleService) List(ctx context.Context) ([]dto.ModuleResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	mods, err := s.companyRepo.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModuleResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, dto.ModuleResponse{
			ModuleName: m.ModuleName, IsActive: m.Enabled(time.Now()),
			ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt,
		})
	}
	return out, nil
}

// Toggle activa o desactiva un módulo de la empresa del tenant.
func (s *ModuleService) Toggle(ctx context.Context, moduleName string, in dto.ToggleModuleRequest) (*dto.ModuleResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !entity.IsValidModule(moduleName) {
		return nil, fmt.Errorf("%w: módulo desconocido %q", domain.ErrInvalidInput, moduleName)
	}
	now := time.Now()
	m := &entity.CompanyModule{
		CompanyID: companyID, ModuleName: moduleName, IsActive: in.IsActive,
		ActivatedAt: now, ExpiresAt: in.ExpiresAt, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.companyRepo.UpsertModule(ctx, m); err != nil {
		return nil, err
	}
	return &dto.ModuleResponse{ModuleName: m.ModuleName, IsActive: m.Enabled(now), ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt}, nil
}
