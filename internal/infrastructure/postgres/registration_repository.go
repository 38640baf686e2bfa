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

var (
	_ repository.PendingRegistrationRepository = (*RegistrationRepo)(nil)
	_ repository.PendingBusinessRepository     = (*PendingBusinessRepo)(nil)
)

const registrationColumns = `id, email, first_name, middle_name, last_name, password_hash, status, created_at, updated_at`

// RegistrationRepo implementación de PendingRegistrationRepository sobre pending_users.
type RegistrationRepo struct {
	q Querier
}

// NewRegistrationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewRegistrationRepository(q Querier) *RegistrationRepo {
	return &RegistrationRepo{q: q}
}

// Create inserta la solicitud. El índice parcial sobre email pendiente devuelve ErrEmailAlreadyExists.
func (r *RegistrationRepo) Create(ctx context.Context, reg *entity.PendingRegistration) error {
	query := `
		INSERT INTO pending_users (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		reg.ID, reg.Email, reg.FirstName, nullableString(reg.MiddleName), reg.LastName,
		reg.PasswordHash, reg.Status, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert pending_users: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID. (nil, nil) si no existe.
func (r *RegistrationRepo) GetByID(ctx context.Context, id string) (*entity.PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM pending_users WHERE id = $1`
	reg, err := scanRegistration(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending_users by id: %w", err)
	}
	return reg, nil
}

// GetPendingByEmail busca la solicitud pendiente de un email (sin distinguir mayúsculas).
func (r *RegistrationRepo) GetPendingByEmail(ctx context.Context, email string) (*entity.PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM pending_users WHERE lower(email) = lower($1) AND status = 'pending' LIMIT 1`
	reg, err := scanRegistration(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending_users by email: %w", err)
	}
	return reg, nil
}

// List lista solicitudes, más recientes primero. status vacío = todas.
func (r *RegistrationRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM pending_users
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending_users: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PendingRegistration, 0, limit)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending_users: %w", err)
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// TransitionStatus es un UPDATE condicionado al estado actual; dos revisiones concurrentes
// no pueden pisarse. Si no afecta filas distingue entre inexistente y estado incompatible.
func (r *RegistrationRepo) TransitionStatus(ctx context.Context, id, status string, at time.Time, from ...string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE pending_users SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4)`,
		id, status, at, from,
	)
	if err != nil {
		return fmt.Errorf("update pending_users status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pending_users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check pending_users: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// CountByStatus cuenta solicitudes agrupadas por estado.
func (r *RegistrationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, count(*) FROM pending_users GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count pending_users: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func scanRegistration(row pgx.Row) (*entity.PendingRegistration, error) {
	var reg entity.PendingRegistration
	err := row.Scan(
		&reg.ID, &reg.Email, &reg.FirstName, &reg.MiddleName, &reg.LastName,
		&reg.PasswordHash, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// PendingBusinessRepo implementación de PendingBusinessRepository sobre pending_businesses.
type PendingBusinessRepo struct {
	q Querier
}

// NewPendingBusinessRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPendingBusinessRepository(q Querier) *PendingBusinessRepo {
	return &PendingBusinessRepo{q: q}
}

// CreateBatch inserta los negocios de una solicitud. Se llama dentro de la tx del registro.
func (r *PendingBusinessRepo) CreateBatch(ctx context.Context, businesses []*entity.PendingBusiness) error {
	if len(businesses) == 0 {
		return nil
	}
	query := `
		INSERT INTO pending_businesses (id, user_id, business_name, dti_certificate_no, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	for _, b := range businesses {
		if _, err := r.q.Exec(ctx, query, b.ID, b.RegistrationID, b.BusinessName, b.DTICertificateNo, b.CreatedAt); err != nil {
			return fmt.Errorf("insert pending_businesses %q: %w", b.BusinessName, err)
		}
	}
	return nil
}

// ListByRegistration negocios de una solicitud en orden de alta.
func (r *PendingBusinessRepo) ListByRegistration(ctx context.Context, registrationID string) ([]*entity.PendingBusiness, error) {
	query := `
		SELECT id, user_id, business_name, dti_certificate_no, created_at
		FROM pending_businesses WHERE user_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("list pending_businesses: %w", err)
	}
	defer rows.Close()
	var list []*entity.PendingBusiness
	for rows.Next() {
		var b entity.PendingBusiness
		if err := rows.Scan(&b.ID, &b.RegistrationID, &b.BusinessName, &b.DTICertificateNo, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending_businesses: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
