package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fsic-portal/internal/application/notify"
	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
	"github.com/jhoicas/fsic-portal/pkg/names"
)

// ApprovalResult resultado de aprobar una solicitud.
type ApprovalResult struct {
	UserID            string
	Email             string
	AccountCreated    bool // false = se reutilizó una cuenta de una ejecución previa
	BusinessesCreated int
}

// ApprovalUseCase convierte una solicitud pending en cuenta permanente:
// usuario de auth, perfil aprobado, rol establishment y un negocio aprobado por cada negocio declarado.
//
// Cada escritura es un insert condicional sobre su clave natural, así que reintentar después de
// un fallo parcial converge al mismo estado sin duplicados. No hay rollback de pasos ya hechos.
type ApprovalUseCase struct {
	regRepo         repository.PendingRegistrationRepository
	bizRepo         repository.PendingBusinessRepository
	authRepo        repository.AuthUserRepository
	accountRepo     repository.ApprovedAccountRepository
	roleRepo        repository.RoleRepository
	approvedBizRepo repository.ApprovedBusinessRepository
	mailer          ports.Mailer
	events          ports.EventPublisher
	loginURL        string
	log             zerolog.Logger
	now             func() time.Time
}

// ApprovalDeps dependencias del flujo de aprobación.
type ApprovalDeps struct {
	Registrations      repository.PendingRegistrationRepository
	Businesses         repository.PendingBusinessRepository
	AuthUsers          repository.AuthUserRepository
	Accounts           repository.ApprovedAccountRepository
	Roles              repository.RoleRepository
	ApprovedBusinesses repository.ApprovedBusinessRepository
	Mailer             ports.Mailer
	Events             ports.EventPublisher
	LoginURL           string
	Log                zerolog.Logger
}

// NewApprovalUseCase construye el caso de uso.
func NewApprovalUseCase(d ApprovalDeps) *ApprovalUseCase {
	return &ApprovalUseCase{
		regRepo:         d.Registrations,
		bizRepo:         d.Businesses,
		authRepo:        d.AuthUsers,
		accountRepo:     d.Accounts,
		roleRepo:        d.Roles,
		approvedBizRepo: d.ApprovedBusinesses,
		mailer:          d.Mailer,
		events:          d.Events,
		loginURL:        d.LoginURL,
		log:             d.Log,
		now:             time.Now,
	}
}

// Approve ejecuta el flujo de aprobación para la solicitud registrationID.
//
// Retorna:
//   - domain.ErrNotFound            si la solicitud no existe.
//   - domain.ErrCredentialNotStaged si la solicitud no trae credencial (no se crea cuenta).
//   - domain.ErrConflict            si la solicitud fue rechazada, antes o durante la aprobación.
//   - error envuelto                ante cualquier fallo del almacén; los pasos previos quedan hechos.
func (uc *ApprovalUseCase) Approve(ctx context.Context, registrationID string) (*ApprovalResult, error) {
	if registrationID == "" {
		return nil, fmt.Errorf("%w: userId es requerido", domain.ErrInvalidInput)
	}

	// ── 1. Solicitud ──────────────────────────────────────────────────────────
	reg, err := uc.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("aprobación: obtener solicitud: %w", err)
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	if reg.Status == entity.RegistrationRejected {
		return nil, domain.ErrConflict
	}
	if !reg.HasStagedCredential() {
		return nil, domain.ErrCredentialNotStaged
	}

	// ── 2. Negocios declarados ────────────────────────────────────────────────
	businesses, err := uc.bizRepo.ListByRegistration(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("aprobación: obtener negocios: %w", err)
	}

	uc.log.Info().
		Str("registration_id", reg.ID).
		Str("email", reg.Email).
		Int("businesses", len(businesses)).
		Msg("aprobando solicitud")

	now := uc.now()
	result := &ApprovalResult{Email: reg.Email}

	// ── 3. Cuenta de auth (reutiliza la de una ejecución previa) ──────────────
	user, created, err := uc.ensureAuthUser(ctx, reg, now)
	if err != nil {
		return nil, err
	}
	result.UserID = user.ID
	result.AccountCreated = created

	// ── 4. Perfil aprobado ────────────────────────────────────────────────────
	// La credencial la eligió el propio solicitante, por eso password_changed nace en true.
	_, err = uc.accountRepo.CreateIfAbsent(ctx, &entity.ApprovedAccount{
		ID:              user.ID,
		FirstName:       reg.FirstName,
		MiddleName:      reg.MiddleName,
		LastName:        reg.LastName,
		Status:          entity.AccountActive,
		PasswordChanged: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("aprobación: crear perfil aprobado: %w", err)
	}

	// ── 5. Rol establishment ──────────────────────────────────────────────────
	_, err = uc.roleRepo.GrantIfAbsent(ctx, &entity.RoleGrant{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Role:      entity.RoleEstablishment,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("aprobación: asignar rol: %w", err)
	}

	// ── 6. Negocios aprobados ─────────────────────────────────────────────────
	for _, b := range businesses {
		ok, err := uc.approvedBizRepo.CreateIfAbsent(ctx, &entity.ApprovedBusiness{
			ID:                 uuid.New().String(),
			UserID:             user.ID,
			BusinessName:       b.BusinessName,
			DTICertificateNo:   b.DTICertificateNo,
			RegistrationStatus: entity.BusinessUnregistered,
			CreatedAt:          now,
		})
		if err != nil {
			return nil, fmt.Errorf("aprobación: crear negocio %q: %w", b.BusinessName, err)
		}
		if ok {
			result.BusinessesCreated++
		}
	}

	// ── 7. Estado de la solicitud ─────────────────────────────────────────────
	// Condicional: un rechazo concurrente gana y la aprobación termina en ErrConflict.
	err = uc.regRepo.TransitionStatus(ctx, reg.ID, entity.RegistrationApproved, now,
		entity.RegistrationPending, entity.RegistrationApproved)
	if err != nil {
		return nil, fmt.Errorf("aprobación: actualizar estado: %w", err)
	}

	uc.log.Info().
		Str("registration_id", reg.ID).
		Str("user_id", user.ID).
		Bool("account_created", result.AccountCreated).
		Int("businesses_created", result.BusinessesCreated).
		Msg("solicitud aprobada")

	// ── 8. Avisos (best-effort) ───────────────────────────────────────────────
	if reg.Status != entity.RegistrationApproved {
		uc.notify(ctx, reg, businesses, user.ID, now)
	}
	return result, nil
}

// ensureAuthUser busca la cuenta por email y la crea con la credencial preparada si no existe.
func (uc *ApprovalUseCase) ensureAuthUser(ctx context.Context, reg *entity.PendingRegistration, now time.Time) (*entity.AuthUser, bool, error) {
	existing, err := uc.authRepo.GetByEmail(ctx, reg.Email)
	if err != nil {
		return nil, false, fmt.Errorf("aprobación: buscar usuario: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	confirmed := now
	user := &entity.AuthUser{
		ID:               uuid.New().String(),
		Email:            reg.Email,
		PasswordHash:     reg.PasswordHash,
		EmailConfirmedAt: &confirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := uc.authRepo.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("aprobación: crear usuario: %w", err)
	}
	if created {
		return user, true, nil
	}

	// Una aprobación concurrente ganó el insert: usar la suya.
	existing, err = uc.authRepo.GetByEmail(ctx, reg.Email)
	if err != nil {
		return nil, false, fmt.Errorf("aprobación: releer usuario: %w", err)
	}
	if existing == nil {
		return nil, false, fmt.Errorf("aprobación: usuario %s no visible tras conflicto", reg.Email)
	}
	return existing, false, nil
}

func (uc *ApprovalUseCase) notify(ctx context.Context, reg *entity.PendingRegistration, businesses []*entity.PendingBusiness, userID string, now time.Time) {
	publish(ctx, uc.events, uc.log, ports.RegistrationEvent{
		Type:           ports.EventRegistrationApproved,
		RegistrationID: reg.ID,
		UserID:         userID,
		Email:          reg.Email,
		Businesses:     len(businesses),
		OccurredAt:     now,
	})

	if uc.mailer == nil {
		return
	}
	labels := make([]string, 0, len(businesses))
	for _, b := range businesses {
		labels = append(labels, fmt.Sprintf("%s (%s)", b.BusinessName, b.DTICertificateNo))
	}
	msg, err := notify.ApprovalEmail(reg.Email, names.Display(reg.FirstName, reg.MiddleName, reg.LastName), labels, uc.loginURL)
	if err == nil {
		err = uc.mailer.Send(ctx, msg)
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("no se pudo enviar el aviso de aprobación")
	}
}
