package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/notify"
	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
	"github.com/jhoicas/fsic-portal/pkg/jwt"
	"github.com/jhoicas/fsic-portal/pkg/names"
	"github.com/jhoicas/fsic-portal/pkg/secret"
)

// ResetMessage respuesta única de request-password-reset, exista o no la cuenta.
const ResetMessage = "If an account exists for that email, a temporary password has been sent."

const minPasswordLength = 8

// resetDeliveryTimeout tope para guardar la clave temporal y enviar el correo.
const resetDeliveryTimeout = 30 * time.Second

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Deps dependencias de AuthUseCase.
type Deps struct {
	AuthUsers repository.AuthUserRepository
	Accounts  repository.ApprovedAccountRepository
	Roles     repository.RoleRepository
	Mailer    ports.Mailer
	JWT       JWTConfig
	LoginURL  string
	Log       zerolog.Logger
}

// AuthUseCase casos de uso de autenticación: login, cambio y reseteo de contraseña, rol establishment.
type AuthUseCase struct {
	authRepo    repository.AuthUserRepository
	accountRepo repository.ApprovedAccountRepository
	roleRepo    repository.RoleRepository
	mailer      ports.Mailer
	jwtCfg      JWTConfig
	loginURL    string
	log         zerolog.Logger
	now         func() time.Time
	pending     sync.WaitGroup
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(d Deps) *AuthUseCase {
	return &AuthUseCase{
		authRepo:    d.AuthUsers,
		accountRepo: d.Accounts,
		roleRepo:    d.Roles,
		mailer:      d.Mailer,
		jwtCfg:      d.JWT,
		loginURL:    d.LoginURL,
		log:         d.Log,
		now:         time.Now,
	}
}

// Login verifica email/password y el rol del portal pedido; genera JWT y retorna token + usuario.
// Email desconocido y password incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	role := in.Portal
	if role == "" {
		role = entity.RoleEstablishment
	}
	if !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: portal desconocido %q", domain.ErrInvalidInput, in.Portal)
	}

	user, err := uc.authRepo.GetByEmail(ctx, names.Email(in.Email))
	if err != nil {
		return nil, fmt.Errorf("login: buscar usuario: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	ok, err := uc.roleRepo.Has(ctx, user.ID, role)
	if err != nil {
		return nil, fmt.Errorf("login: verificar rol: %w", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	changed := true
	account, err := uc.accountRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: obtener perfil: %w", err)
	}
	if account != nil {
		if account.Status != entity.AccountActive {
			return nil, domain.ErrForbidden
		}
		changed = account.PasswordChanged
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", role).Msg("login")
	return &dto.LoginResponse{
		Token: token,
		User: dto.SessionUser{
			ID:              user.ID,
			Email:           user.Email,
			Role:            role,
			PasswordChanged: changed,
		},
	}, nil
}

// ChangePassword reemplaza la contraseña del usuario y marca password_changed.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	if len(in.NewPassword) < minPasswordLength {
		return fmt.Errorf("%w: new_password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLength)
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: la nueva contraseña debe ser distinta", domain.ErrInvalidInput)
	}
	user, err := uc.authRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("cambio de contraseña: buscar usuario: %w", err)
	}
	if user == nil {
		return domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("cambio de contraseña: hash: %w", err)
	}
	// El resto corre fuera del request: el camino con cuenta responde tras el mismo trabajo que el camino sin ella.
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetDeliveryTimeout)
		defer cancel()
		uc.deliverReset(bg, user, string(hash), temp)
	}()
	return ResetMessage, nil
}

// deliverReset guarda la clave temporal, limpia password_changed y envía el correo. Solo registra fallos.
func (uc *AuthUseCase) deliverReset(ctx context.Context, user *entity.AuthUser, hash, temp string) {
	now := uc.now()
	if err := uc.authRepo.UpdatePasswordHash(ctx, user.ID, hash, now); err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("reset: no se pudo guardar la clave temporal")
		return
	}
	if err := uc.accountRepo.SetPasswordChanged(ctx, user.ID, false, now); err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("reset: no se pudo limpiar password_changed")
	}
	if uc.mailer == nil {
		return
	}
	msg, err := notify.PasswordResetEmail(user.Email, temp, uc.loginURL)
	if err == nil {
		err = uc.mailer.Send(ctx, msg)
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("reset: no se pudo enviar el correo")
		return
	}
	uc.log.Info().Str("user_id", user.ID).Msg("reset: clave temporal enviada")
}

// Wait bloquea hasta que terminen los resets en curso. Se llama al apagar el servidor.
func (uc *AuthUseCase) Wait() {
	uc.pending.Wait()
}

// AssignEstablishmentRole otorga el rol establishment al propio llamador.
// Retorna domain.ErrForbidden si targetUserID no es el usuario autenticado. Repetir la llamada no duplica.
func (uc *AuthUseCase) AssignEstablishmentRole(ctx context.Context, callerID, targetUserID string) error {
	if callerID == "" {
		return domain.ErrUnauthorized
	}
	if targetUserID != callerID {
		return domain.ErrForbidden
	}
	created, err := uc.roleRepo.GrantIfAbsent(ctx, &entity.RoleGrant{
		ID:        uuid.New().String(),
		UserID:    callerID,
		Role:      entity.RoleEstablishment,
		CreatedAt: uc.now(),
	})
	if err != nil {
		return fmt.Errorf("asignar rol: %w", err)
	}
	uc.log.Info().Str("user_id", callerID).Bool("created", created).Msg("rol establishment asignado")
	return nil
}
