package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fsic-portal/internal/domain/entity"
)

// PendingRegistrationRepository define el puerto de persistencia para solicitudes (pending_users).
// Los métodos Get* devuelven (nil, nil) cuando no hay fila.
type PendingRegistrationRepository interface {
	Create(ctx context.Context, reg *entity.PendingRegistration) error
	GetByID(ctx context.Context, id string) (*entity.PendingRegistration, error)
	// GetPendingByEmail busca una solicitud en estado pending con ese email.
	GetPendingByEmail(ctx context.Context, email string) (*entity.PendingRegistration, error)
	// List devuelve solicitudes más recientes primero; status vacío = todas.
	List(ctx context.Context, status string, limit, offset int) ([]*entity.PendingRegistration, error)
	// TransitionStatus pasa la solicitud a status solo si su estado actual está en from.
	// domain.ErrNotFound si no existe; domain.ErrConflict si el estado actual no está en from.
	TransitionStatus(ctx context.Context, id, status string, at time.Time, from ...string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// PendingBusinessRepository define el puerto para los negocios de una solicitud (pending_businesses).
type PendingBusinessRepository interface {
	CreateBatch(ctx context.Context, businesses []*entity.PendingBusiness) error
	ListByRegistration(ctx context.Context, registrationID string) ([]*entity.PendingBusiness, error)
}
