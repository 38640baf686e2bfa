package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fsic-portal/internal/domain/entity"
)

// AuthUserRepository es el almacén de usuarios de autenticación (auth_users).
type AuthUserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.AuthUser, error)
	// GetByEmail compara sin distinguir mayúsculas.
	GetByEmail(ctx context.Context, email string) (*entity.AuthUser, error)
	// CreateIfAbsent inserta el usuario salvo que el email ya exista.
	// created=false indica que otro proceso lo creó antes; el caller debe releer por email.
	CreateIfAbsent(ctx context.Context, user *entity.AuthUser) (created bool, err error)
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
}
