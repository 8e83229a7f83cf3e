package repository

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company y sus módulos.
// Opera por id explícito: la empresa es el tenant mismo.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error

	ListModules(ctx context.Context, companyID string) ([]*entity.CompanyModule, error)
	UpsertModule(ctx context.Context, module *entity.CompanyModule) error
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}
