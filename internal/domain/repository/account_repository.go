package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fsic-portal/internal/domain/entity"
)

// ApprovedAccountRepository define el puerto de persistencia para approved_users.
type ApprovedAccountRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ApprovedAccount, error)
	// CreateIfAbsent inserta salvo que ya exista una fila con el mismo id.
	CreateIfAbsent(ctx context.Context, account *entity.ApprovedAccount) (created bool, err error)
	// SetPasswordChanged devuelve domain.ErrNotFound si la cuenta no existe.
	SetPasswordChanged(ctx context.Context, id string, changed bool, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.ApprovedAccount, error)
	Count(ctx context.Context) (int, error)
}

// RoleRepository define el puerto para user_roles.
type RoleRepository interface {
	Has(ctx context.Context, userID, role string) (bool, error)
	// GrantIfAbsent inserta (user_id, role) salvo que ya exista.
	GrantIfAbsent(ctx context.Context, grant *entity.RoleGrant) (created bool, err error)
	ListByUser(ctx context.Context, userID string) ([]string, error)
}

// ApprovedBusinessRepository define el puerto para approved_businesses.
type ApprovedBusinessRepository interface {
	// CreateIfAbsent inserta salvo que exista la clave (user_id, business_name, dti_certificate_no).
	CreateIfAbsent(ctx context.Context, business *entity.ApprovedBusiness) (created bool, err error)
	ListByUser(ctx context.Context, userID string) ([]*entity.ApprovedBusiness, error)
}
