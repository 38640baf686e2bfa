package registration

import (
	"context"

	"github.com/jhoicas/fsic-portal/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repos de solicitudes atados a ella.
// Si fn retorna error no queda nada persistido.
type TxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		regRepo repository.PendingRegistrationRepository,
		bizRepo repository.PendingBusinessRepository,
	) error) error
}
