package ports

import (
	"context"

	"github.com/jhoicas/fsic-portal/internal/domain/entity"
)

// RegistrationPDFGenerator genera el resumen imprimible de una solicitud.
type RegistrationPDFGenerator interface {
	GenerateRegistrationPDF(
		ctx context.Context,
		reg *entity.PendingRegistration,
		businesses []*entity.PendingBusiness,
	) ([]byte, error)
}
