package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
)

// AccountUseCase consultas sobre cuentas aprobadas.
type AccountUseCase struct {
	accountRepo  repository.ApprovedAccountRepository
	authRepo     repository.AuthUserRepository
	roleRepo     repository.RoleRepository
	businessRepo repository.ApprovedBusinessRepository
}

// NewAccountUseCase construye el caso de uso con los puertos de persistencia.
func NewAccountUseCase(
	accountRepo repository.ApprovedAccountRepository,
	authRepo repository.AuthUserRepository,
	roleRepo repository.RoleRepository,
	businessRepo repository.ApprovedBusinessRepository,
) *AccountUseCase {
	return &AccountUseCase{accountRepo: accountRepo, authRepo: authRepo, roleRepo: roleRepo, businessRepo: businessRepo}
}

// List devuelve cuentas aprobadas (más recientes primero) con email, rol y negocios.
func (uc *AccountUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.AccountListResponse, error) {
	page.DefaultPage()
	accounts, err := uc.accountRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("cuentas: listar: %w", err)
	}
	total, err := uc.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("cuentas: contar: %w", err)
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out, err := uc.enrich(ctx, a)
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}
	return &dto.AccountListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Me devuelve el perfil del usuario autenticado. domain.ErrNotFound si no tiene cuenta aprobada.
func (uc *AccountUseCase) Me(ctx context.Context, userID string) (*dto.AccountResponse, error) {
	a, err := uc.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cuentas: obtener: %w", err)
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return uc.enrich(ctx, a)
}

func (uc *AccountUseCase) enrich(ctx context.Context, a *entity.ApprovedAccount) (*dto.AccountResponse, error) {
	out := &dto.AccountResponse{
		ID:              a.ID,
		FirstName:       a.FirstName,
		MiddleName:      a.MiddleName,
		LastName:        a.LastName,
		Status:          a.Status,
		PasswordChanged: a.PasswordChanged,
		Businesses:      []dto.ApprovedBusinessResponse{},
		CreatedAt:       a.CreatedAt,
	}
	user, err := uc.authRepo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("cuentas: usuario %s: %w", a.ID, err)
	}
	if user != nil {
		out.Email = user.Email
	}
	roles, err := uc.roleRepo.ListByUser(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("cuentas: roles %s: %w", a.ID, err)
	}
	out.Role = primaryRole(roles)

	businesses, err := uc.businessRepo.ListByUser(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("cuentas: negocios %s: %w", a.ID, err)
	}
	for _, b := range businesses {
		out.Businesses = append(out.Businesses, dto.ApprovedBusinessResponse{
			ID:                 b.ID,
			BusinessName:       b.BusinessName,
			DTICertificateNo:   b.DTICertificateNo,
			RegistrationStatus: b.RegistrationStatus,
		})
	}
	return out, nil
}

// primaryRole admin tiene precedencia sobre establishment.
func primaryRole(roles []string) string {
	role := ""
	for _, r := range roles {
		if r == entity.RoleAdmin {
			return r
		}
		if r == entity.RoleEstablishment {
			role = r
		}
	}
	return role
}
