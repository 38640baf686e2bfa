package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
)

var _ repository.AuthUserRepository = (*AuthUserRepo)(nil)

const authUserColumns = `id, email, password_hash, email_confirmed_at, created_at, updated_at`

// AuthUserRepo implementación del puerto AuthUserRepository sobre auth_users.
type AuthUserRepo struct {
	q Querier
}

// NewAuthUserRepository construye el adaptador de persistencia para usuarios de auth.
func NewAuthUserRepository(q Querier) *AuthUserRepo {
	return &AuthUserRepo{q: q}
}

// GetByID obtiene un usuario por ID.
func (r *AuthUserRepo) GetByID(ctx context.Context, id string) (*entity.AuthUser, error) {
	return r.findOne(ctx, `SELECT `+authUserColumns+` FROM auth_users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email sin distinguir mayúsculas.
func (r *AuthUserRepo) GetByEmail(ctx context.Context, email string) (*entity.AuthUser, error) {
	return r.findOne(ctx, `SELECT `+authUserColumns+` FROM auth_users WHERE lower(email) = lower($1) LIMIT 1`, email)
}

// CreateIfAbsent inserta el usuario salvo que el email (o el id) ya exista.
func (r *AuthUserRepo) CreateIfAbsent(ctx context.Context, user *entity.AuthUser) (bool, error) {
	query := `
		INSERT INTO auth_users (` + authUserColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.EmailConfirmedAt, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert auth_users: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePasswordHash reemplaza la credencial del usuario.
func (r *AuthUserRepo) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE auth_users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
	if err != nil {
		return fmt.Errorf("update auth_users password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AuthUserRepo) findOne(ctx context.Context, query string, arg string) (*entity.AuthUser, error) {
	var u entity.AuthUser
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get auth_users: %w", err)
	}
	return &u, nil
}
