package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
)

// DashboardUseCase contadores para el panel de administración.
type DashboardUseCase struct {
	regRepo     repository.PendingRegistrationRepository
	accountRepo repository.ApprovedAccountRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(regRepo repository.PendingRegistrationRepository, accountRepo repository.ApprovedAccountRepository) *DashboardUseCase {
	return &DashboardUseCase{regRepo: regRepo, accountRepo: accountRepo}
}

// Stats cuenta solicitudes por estado y cuentas aprobadas.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*dto.DashboardResponse, error) {
	counts, err := uc.regRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: contar solicitudes: %w", err)
	}
	accounts, err := uc.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: contar cuentas: %w", err)
	}
	return &dto.DashboardResponse{
		PendingRegistrations:  counts[entity.RegistrationPending],
		ApprovedRegistrations: counts[entity.RegistrationApproved],
		RejectedRegistrations: counts[entity.RegistrationRejected],
		ApprovedAccounts:      accounts,
	}, nil
}
