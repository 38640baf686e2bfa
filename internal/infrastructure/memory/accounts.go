package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
)

var _ repository.AuthUserRepository = (*AuthUserRepo)(nil)

// AuthUserRepo almacén de usuarios en memoria. Email único sin distinguir mayúsculas.
type AuthUserRepo struct{ s *Store }

// GetByID obtiene un usuario o (nil, nil).
func (r *AuthUserRepo) GetByID(_ context.Context, id string) (*entity.AuthUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.authUsers[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetByEmail obtiene un usuario por email.
func (r *AuthUserRepo) GetByEmail(_ context.Context, email string) (*entity.AuthUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u := r.s.authUserByEmail(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) authUserByEmail(email string) *entity.AuthUser {
	for _, u := range s.authUsers {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// CreateIfAbsent inserta salvo que el email exista.
func (r *AuthUserRepo) CreateIfAbsent(_ context.Context, user *entity.AuthUser) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.authUserByEmail(user.Email) != nil {
		return false, nil
	}
	cp := *user
	r.s.authUsers[user.ID] = &cp
	return true, nil
}

// UpdatePasswordHash reemplaza la credencial.
func (r *AuthUserRepo) UpdatePasswordHash(_ context.Context, id, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.authUsers[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = at
	return nil
}

var _ repository.ApprovedAccountRepository = (*AccountRepo)(nil)

// AccountRepo cuentas aprobadas en memoria.
type AccountRepo struct{ s *Store }

// GetByID obtiene una cuenta o (nil, nil).
func (r *AccountRepo) GetByID(_ context.Context, id string) (*entity.ApprovedAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// CreateIfAbsent inserta salvo que el id exista.
func (r *AccountRepo) CreateIfAbsent(_ context.Context, account *entity.ApprovedAccount) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[account.ID]; ok {
		return false, nil
	}
	cp := *account
	r.s.accounts[account.ID] = &cp
	return true, nil
}

// SetPasswordChanged actualiza el flag. ErrNotFound si la cuenta no existe.
func (r *AccountRepo) SetPasswordChanged(_ context.Context, id string, changed bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordChanged = changed
	a.UpdatedAt = at
	return nil
}

// List devuelve cuentas más recientes primero.
func (r *AccountRepo) List(_ context.Context, limit, offset int) ([]*entity.ApprovedAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.ApprovedAccount, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		cp := *a
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, limit, offset), nil
}

// Count número de cuentas.
func (r *AccountRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.accounts), nil
}

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo roles en memoria.
type RoleRepo struct{ s *Store }

// Has informa si el usuario tiene el rol.
func (r *RoleRepo) Has(_ context.Context, userID, role string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.roles[[2]string{userID, role}]
	return ok, nil
}

// GrantIfAbsent inserta (user_id, role) salvo que exista.
func (r *RoleRepo) GrantIfAbsent(_ context.Context, grant *entity.RoleGrant) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]string{grant.UserID, grant.Role}
	if _, ok := r.s.roles[key]; ok {
		return false, nil
	}
	cp := *grant
	r.s.roles[key] = &cp
	return true, nil
}

// ListByUser roles del usuario, ordenados.
func (r *RoleRepo) ListByUser(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for key := range r.s.roles {
		if key[0] == userID {
			out = append(out, key[1])
		}
	}
	sort.Strings(out)
	return out, nil
}

var _ repository.ApprovedBusinessRepository = (*ApprovedBusinessRepo)(nil)

// ApprovedBusinessRepo negocios aprobados en memoria.
type ApprovedBusinessRepo struct{ s *Store }

// CreateIfAbsent inserta salvo que exista (user_id, business_name, dti_certificate_no).
func (r *ApprovedBusinessRepo) CreateIfAbsent(_ context.Context, b *entity.ApprovedBusiness) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [3]string{b.UserID, b.BusinessName, b.DTICertificateNo}
	if _, ok := r.s.approvedBusinesses[key]; ok {
		return false, nil
	}
	cp := *b
	r.s.approvedBusinesses[key] = &cp
	r.s.approvedOrder = append(r.s.approvedOrder, key)
	return true, nil
}

// ListByUser negocios del usuario en orden de inserción.
func (r *ApprovedBusinessRepo) ListByUser(_ context.Context, userID string) ([]*entity.ApprovedBusiness, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ApprovedBusiness
	for _, key := range r.s.approvedOrder {
		if key[0] == userID {
			cp := *r.s.approvedBusinesses[key]
			out = append(out, &cp)
		}
	}
	return out, nil
}
