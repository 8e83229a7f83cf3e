package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// CompanyUseCase aplica reglas de negocio para empresas (alta, consulta y edición de la propia).
type CompanyUseCase struct {
	repo     repository.CompanyRepository
	users    repository.UserRepository
	txRunner ports.TxRunner
	tokens   *auth.AuthUseCase
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(repo repository.CompanyRepository, users repository.UserRepository, txRunner ports.TxRunner, tokens *auth.AuthUseCase) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, users: users, txRunner: txRunner, tokens: tokens}
}

// Onboard crea empresa, módulos por defecto y el primer administrador en una sola transacción.
// Devuelve domain.ErrDuplicate si el tax_id ya existe y ErrEmailAlreadyExists si el email del admin está tomado.
func (uc *CompanyUseCase) Onboard(ctx context.Context, in dto.CreateCompanyRequest) (*dto.OnboardingResponse, error) {
	existing, err := uc.repo.GetByTaxID(ctx, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	adminEmail := strings.ToLower(strings.TrimSpace(in.AdminEmail))
	taken, err := uc.users.FindByEmailForLogin(ctx, adminEmail)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(in.AdminPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    entity.CompanyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	admin := &entity.User{
		ID:           uuid.New().String(),
		Email:        adminEmail,
		PasswordHash: hash,
		Name:         in.AdminName,
		Role:         entity.RoleAdmin,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tctx := tenant.WithCompany(ctx, company.ID)
	err = uc.txRunner.Run(tctx, func(s repository.Store) error {
		if err := s.Companies.Create(tctx, company); err != nil {
			return err
		}
		for _, name := range entity.AllModules {
			if err := s.Companies.UpsertModule(tctx, &entity.CompanyModule{
				CompanyID: company.ID, ModuleName: name, IsActive: true,
				ActivatedAt: now, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
		}
		return s.Users.Create(tctx, admin)
	})
	if err != nil {
		return nil, err
	}
	token, err := uc.tokens.IssueToken(admin)
	if err != nil {
		return nil, err
	}
	return &dto.OnboardingResponse{
		Company: *toCompanyResponse(company),
		Admin:   *toUserResponse(admin),
		Token:   token,
	}, nil
}

// GetOwn devuelve la empresa del tenant actual.
func (uc *CompanyUseCase) GetOwn(ctx context.Context) (*dto.CompanyResponse, error) {
	company, err := uc.own(ctx)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// UpdateOwn actualiza datos de contacto de la empresa del tenant actual.
func (uc *CompanyUseCase) UpdateOwn(ctx context.Context, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.own(ctx)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		company.Name = *in.Name
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

func (uc *CompanyUseCase) own(ctx context.Context) (*entity.Company, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
