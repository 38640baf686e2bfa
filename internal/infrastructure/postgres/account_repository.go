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
	_ repository.ApprovedAccountRepository  = (*AccountRepo)(nil)
	_ repository.RoleRepository             = (*RoleRepo)(nil)
	_ repository.ApprovedBusinessRepository = (*ApprovedBusinessRepo)(nil)
)

const accountColumns = `id, first_name, middle_name, last_name, status, password_changed, created_at, updated_at`

// AccountRepo implementación de ApprovedAccountRepository sobre approved_users.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Acepta pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// GetByID obtiene la cuenta aprobada. (nil, nil) si no existe.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.ApprovedAccount, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM approved_users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get approved_users: %w", err)
	}
	return a, nil
}

// CreateIfAbsent inserta la cuenta salvo que ya exista una con el mismo id.
func (r *AccountRepo) CreateIfAbsent(ctx context.Context, a *entity.ApprovedAccount) (bool, error) {
	query := `
		INSERT INTO approved_users (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		a.ID, a.FirstName, nullableString(a.MiddleName), a.LastName, a.Status, a.PasswordChanged, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert approved_users: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetPasswordChanged actualiza el flag password_changed. ErrNotFound si la cuenta no existe.
func (r *AccountRepo) SetPasswordChanged(ctx context.Context, id string, changed bool, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE approved_users SET password_changed = $2, updated_at = $3 WHERE id = $1`, id, changed, at)
	if err != nil {
		return fmt.Errorf("update approved_users password_changed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista cuentas aprobadas, más recientes primero.
func (r *AccountRepo) List(ctx context.Context, limit, offset int) ([]*entity.ApprovedAccount, error) {
	rows, err := r.q.Query(ctx, `SELECT `+accountColumns+`
		FROM approved_users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list approved_users: %w", err)
	}
	defer rows.Close()
	var list []*entity.ApprovedAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approved_users: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Count número total de cuentas aprobadas.
func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM approved_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count approved_users: %w", err)
	}
	return n, nil
}

func scanAccount(row pgx.Row) (*entity.ApprovedAccount, error) {
	var a entity.ApprovedAccount
	err := row.Scan(&a.ID, &a.FirstName, &a.MiddleName, &a.LastName, &a.Status, &a.PasswordChanged, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RoleRepo implementación de RoleRepository sobre user_roles.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// Has informa si el usuario tiene el rol.
func (r *RoleRepo) Has(ctx context.Context, userID, role string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`, userID, role,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check user_roles: %w", err)
	}
	return ok, nil
}

// GrantIfAbsent inserta (user_id, role) en un solo statement; el UNIQUE resuelve carreras.
func (r *RoleRepo) GrantIfAbsent(ctx context.Context, g *entity.RoleGrant) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO user_roles (id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role) DO NOTHING`,
		g.ID, g.UserID, g.Role, g.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert user_roles: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser roles del usuario ordenados por nombre.
func (r *RoleRepo) ListByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user_roles: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ApprovedBusinessRepo implementación de ApprovedBusinessRepository sobre approved_businesses.
type ApprovedBusinessRepo struct {
	q Querier
}

// NewApprovedBusinessRepository construye el adaptador.
func NewApprovedBusinessRepository(q Querier) *ApprovedBusinessRepo {
	return &ApprovedBusinessRepo{q: q}
}

// CreateIfAbsent inserta el negocio salvo que exista (user_id, business_name, dti_certificate_no).
func (r *ApprovedBusinessRepo) CreateIfAbsent(ctx context.Context, b *entity.ApprovedBusiness) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO approved_businesses (id, user_id, business_name, dti_certificate_no, registration_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, business_name, dti_certificate_no) DO NOTHING`,
		b.ID, b.UserID, b.BusinessName, b.DTICertificateNo, b.RegistrationStatus, b.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert approved_businesses: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser negocios aprobados del usuario en orden de alta.
func (r *ApprovedBusinessRepo) ListByUser(ctx context.Context, userID string) ([]*entity.ApprovedBusiness, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, business_name, dti_certificate_no, registration_status, created_at
		FROM approved_businesses WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list approved_businesses: %w", err)
	}
	defer rows.Close()
	var list []*entity.ApprovedBusiness
	for rows.Next() {
		var b entity.ApprovedBusiness
		if err := rows.Scan(&b.ID, &b.UserID, &b.BusinessName, &b.DTICertificateNo, &b.RegistrationStatus, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approved_businesses: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
