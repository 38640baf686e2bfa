// Package memory implementa los puertos de persistencia en memoria.
// Se usa con DB_DRIVER=memory para desarrollo local y como doble en los tests de casos de uso.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/fsic-portal/internal/application/registration"
	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
)

// Store guarda todas las tablas bajo un único mutex.
type Store struct {
	mu                 sync.RWMutex
	registrations      map[string]*entity.PendingRegistration
	pendingBusinesses  map[string][]*entity.PendingBusiness // por registration_id
	authUsers          map[string]*entity.AuthUser          // por id
	accounts           map[string]*entity.ApprovedAccount
	roles              map[[2]string]*entity.RoleGrant // (user_id, role)
	approvedBusinesses map[[3]string]*entity.ApprovedBusiness
	approvedOrder      [][3]string
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		registrations:      make(map[string]*entity.PendingRegistration),
		pendingBusinesses:  make(map[string][]*entity.PendingBusiness),
		authUsers:          make(map[string]*entity.AuthUser),
		accounts:           make(map[string]*entity.ApprovedAccount),
		roles:              make(map[[2]string]*entity.RoleGrant),
		approvedBusinesses: make(map[[3]string]*entity.ApprovedBusiness),
	}
}

// Registrations devuelve el repositorio de solicitudes.
func (s *Store) Registrations() *RegistrationRepo { return &RegistrationRepo{s: s} }

// PendingBusinesses devuelve el repositorio de negocios de solicitudes.
func (s *Store) PendingBusinesses() *PendingBusinessRepo { return &PendingBusinessRepo{s: s} }

// AuthUsers devuelve el almacén de usuarios.
func (s *Store) AuthUsers() *AuthUserRepo { return &AuthUserRepo{s: s} }

// Accounts devuelve el repositorio de cuentas aprobadas.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Roles devuelve el repositorio de roles.
func (s *Store) Roles() *RoleRepo { return &RoleRepo{s: s} }

// ApprovedBusinesses devuelve el repositorio de negocios aprobados.
func (s *Store) ApprovedBusinesses() *ApprovedBusinessRepo { return &ApprovedBusinessRepo{s: s} }

// TxRunner devuelve un runner que aplica las escrituras solo si fn termina sin error.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// ── Solicitudes ───────────────────────────────────────────────────────────────

var _ repository.PendingRegistrationRepository = (*RegistrationRepo)(nil)

// RegistrationRepo solicitudes en memoria.
type RegistrationRepo struct{ s *Store }

// Create inserta la solicitud. Falla con ErrEmailAlreadyExists si hay otra pending con el mismo email.
func (r *RegistrationRepo) Create(_ context.Context, reg *entity.PendingRegistration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertRegistration(reg)
}

func (s *Store) insertRegistration(reg *entity.PendingRegistration) error {
	if reg.Status == entity.RegistrationPending {
		for _, other := range s.registrations {
			if other.Status == entity.RegistrationPending && strings.EqualFold(other.Email, reg.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
	}
	cp := *reg
	s.registrations[reg.ID] = &cp
	return nil
}

// GetByID obtiene una solicitud o (nil, nil).
func (r *RegistrationRepo) GetByID(_ context.Context, id string) (*entity.PendingRegistration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

// GetPendingByEmail busca una solicitud pending por email.
func (r *RegistrationRepo) GetPendingByEmail(_ context.Context, email string) (*entity.PendingRegistration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, reg := range r.s.registrations {
		if reg.Status == entity.RegistrationPending && strings.EqualFold(reg.Email, email) {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

// List devuelve solicitudes más recientes primero.
func (r *RegistrationRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.PendingRegistration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.PendingRegistration
	for _, reg := range r.s.registrations {
		if status == "" || reg.Status == status {
			cp := *reg
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, limit, offset), nil
}

// TransitionStatus cambia el estado solo desde uno de los estados en from.
func (r *RegistrationRepo) TransitionStatus(_ context.Context, id, status string, at time.Time, from ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !slices.Contains(from, reg.Status) {
		return domain.ErrConflict
	}
	reg.Status = status
	reg.UpdatedAt = at
	return nil
}

// CountByStatus cuenta solicitudes por estado.
func (r *RegistrationRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]int)
	for _, reg := range r.s.registrations {
		out[reg.Status]++
	}
	return out, nil
}

var _ repository.PendingBusinessRepository = (*PendingBusinessRepo)(nil)

// PendingBusinessRepo negocios de solicitudes en memoria.
type PendingBusinessRepo struct{ s *Store }

// CreateBatch inserta los negocios.
func (r *PendingBusinessRepo) CreateBatch(_ context.Context, businesses []*entity.PendingBusiness) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.insertPendingBusinesses(businesses)
	return nil
}

func (s *Store) insertPendingBusinesses(businesses []*entity.PendingBusiness) {
	for _, b := range businesses {
		cp := *b
		s.pendingBusinesses[b.RegistrationID] = append(s.pendingBusinesses[b.RegistrationID], &cp)
	}
}

// ListByRegistration devuelve los negocios en orden de inserción.
func (r *PendingBusinessRepo) ListByRegistration(_ context.Context, registrationID string) ([]*entity.PendingBusiness, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	src := r.s.pendingBusinesses[registrationID]
	out := make([]*entity.PendingBusiness, 0, len(src))
	for _, b := range src {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

// ── Transacción ───────────────────────────────────────────────────────────────

var _ registration.TxRunner = (*TxRunner)(nil)

// TxRunner acumula las escrituras de la transacción y las aplica al final.
type TxRunner struct{ s *Store }

// RunRegistration ejecuta fn; si retorna error no se aplica ninguna escritura.
func (t *TxRunner) RunRegistration(ctx context.Context, fn func(
	regRepo repository.PendingRegistrationRepository,
	bizRepo repository.PendingBusinessRepository,
) error) error {
	tx := &txRegistrationRepo{RegistrationRepo: t.s.Registrations()}
	txBiz := &txBusinessRepo{PendingBusinessRepo: t.s.PendingBusinesses()}
	if err := fn(tx, txBiz); err != nil {
		return err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, reg := range tx.created {
		if err := t.s.insertRegistration(reg); err != nil {
			return err
		}
	}
	t.s.insertPendingBusinesses(txBiz.created)
	return nil
}

type txRegistrationRepo struct {
	*RegistrationRepo
	created []*entity.PendingRegistration
}

func (r *txRegistrationRepo) Create(_ context.Context, reg *entity.PendingRegistration) error {
	cp := *reg
	r.created = append(r.created, &cp)
	return nil
}

type txBusinessRepo struct {
	*PendingBusinessRepo
	created []*entity.PendingBusiness
}

func (r *txBusinessRepo) CreateBatch(_ context.Context, businesses []*entity.PendingBusiness) error {
	for _, b := range businesses {
		cp := *b
		r.created = append(r.created, &cp)
	}
	return nil
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
