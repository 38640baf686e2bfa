package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fsic-portal/internal/application/auth"
	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/memory"
	"github.com/jhoicas/fsic-portal/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

type captureMailer struct {
	sent []ports.MailMessage
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func newAuth(s *memory.Store, mailer ports.Mailer) *auth.AuthUseCase {
	return auth.NewAuthUseCase(auth.Deps{
		AuthUsers: s.AuthUsers(),
		Accounts:  s.Accounts(),
		Roles:     s.Roles(),
		Mailer:    mailer,
		JWT:       auth.JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "fsic-portal"},
		LoginURL:  "http://portal/login",
		Log:       zerolog.Nop(),
	})
}

// seedUser crea usuario, perfil aprobado y rol.
func seedUser(t *testing.T, s *memory.Store, id, email, password, role string, changed bool) {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	_, err = s.AuthUsers().CreateIfAbsent(ctx, &entity.AuthUser{ID: id, Email: email, PasswordHash: string(hash), EmailConfirmedAt: &now})
	require.NoError(t, err)
	_, err = s.Accounts().CreateIfAbsent(ctx, &entity.ApprovedAccount{
		ID: id, FirstName: "Juan", LastName: "Dela Cruz", Status: entity.AccountActive, PasswordChanged: changed,
	})
	require.NoError(t, err)
	if role != "" {
		_, err = s.Roles().GrantIfAbsent(ctx, &entity.RoleGrant{ID: id + "-r", UserID: id, Role: role})
		require.NoError(t, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_OK(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "secreto123", entity.RoleEstablishment, true)
	uc := newAuth(s, nil)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Email: " A@B.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, entity.RoleEstablishment, res.User.Role)
	assert.True(t, res.User.PasswordChanged)

	claims, err := jwt.Parse(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, entity.RoleEstablishment, claims.Role)
}

func TestLogin_Errores(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "secreto123", entity.RoleEstablishment, true)
	uc := newAuth(s, nil)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "secreto123", Portal: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin rol admin no entra al portal admin")

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "secreto123", Portal: "otro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambio de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestChangePassword(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "temporal123", entity.RoleEstablishment, false)
	uc := newAuth(s, nil)
	ctx := context.Background()

	changed, err := uc.PasswordChanged(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, changed)

	err = uc.ChangePassword(ctx, "u1", dto.ChangePasswordRequest{CurrentPassword: "mala", NewPassword: "nuevaClave1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	err = uc.ChangePassword(ctx, "u1", dto.ChangePasswordRequest{CurrentPassword: "temporal123", NewPassword: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = uc.ChangePassword(ctx, "u1", dto.ChangePasswordRequest{CurrentPassword: "temporal123", NewPassword: "temporal123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.ChangePassword(ctx, "u1", dto.ChangePasswordRequest{CurrentPassword: "temporal123", NewPassword: "nuevaClave1"}))
	changed, _ = uc.PasswordChanged(ctx, "u1")
	assert.True(t, changed)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "nuevaClave1"})
	assert.NoError(t, err)
}

func TestPasswordChanged_SinPerfil(t *testing.T) {
	uc := newAuth(memory.NewStore(), nil)
	changed, err := uc.PasswordChanged(context.Background(), "admin-sin-perfil")
	require.NoError(t, err)
	assert.True(t, changed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reset de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestPasswordReset_MismaRespuesta(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "secreto123", entity.RoleEstablishment, true)
	mailer := &captureMailer{}
	uc := newAuth(s, mailer)
	ctx := context.Background()

	known, err := uc.RequestPasswordReset(ctx, "a@b.com")
	require.NoError(t, err)
	unknown, err := uc.RequestPasswordReset(ctx, "nadie@b.com")
	require.NoError(t, err)
	uc.Wait()

	assert.Equal(t, known, unknown)
	assert.Equal(t, auth.ResetMessage, known)
	assert.Len(t, mailer.sent, 1, "solo se envía correo a cuentas existentes")
}

func TestRequestPasswordReset_ClaveTemporal(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "secreto123", entity.RoleEstablishment, true)
	mailer := &captureMailer{}
	uc := newAuth(s, mailer)
	ctx := context.Background()

	msg, err := uc.RequestPasswordReset(ctx, "A@b.com ")
	require.NoError(t, err)
	uc.Wait()

	account, _ := s.Accounts().GetByID(ctx, "u1")
	assert.False(t, account.PasswordChanged, "el reset obliga a cambiar la clave")

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "la clave anterior deja de servir")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@b.com", mailer.sent[0].To)
	assert.Equal(t, "Your Temporary Password", mailer.sent[0].Subject)

	user, _ := s.AuthUsers().GetByID(ctx, "u1")
	var temp string
	for _, field := range strings.FieldsFunc(mailer.sent[0].HTML, func(r rune) bool { return r == '<' || r == '>' }) {
		if len(field) == 16 && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(field)) == nil {
			temp = field
		}
	}
	require.NotEmpty(t, temp, "el correo lleva la clave temporal")
	assert.NotContains(t, msg, temp, "la clave nunca va en la respuesta")
}

func TestRequestPasswordReset_FalloDeCorreo(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "secreto123", entity.RoleEstablishment, true)
	uc := newAuth(s, &captureMailer{err: errors.New("smtp caído")})

	msg, err := uc.RequestPasswordReset(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, auth.ResetMessage, msg)
	uc.Wait()
}

// slowMailer simula un SMTP lento.
type slowMailer struct {
	delay time.Duration
	mu    sync.Mutex
	sent  int
}

func (m *slowMailer) Send(ctx context.Context, _ ports.MailMessage) error {
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	m.mu.Lock()
	m.sent++
	m.mu.Unlock()
	return nil
}

func TestRequestPasswordReset_TiempoNoDelataLaCuenta(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "u1", "a@b.com", "secreto123", entity.RoleEstablishment, true)
	mailer := &slowMailer{delay: 300 * time.Millisecond}
	uc := newAuth(s, mailer)
	ctx, cancel := context.WithCancel(context.Background())

	start := time.Now()
	_, err := uc.RequestPasswordReset(ctx, "nadie@b.com")
	require.NoError(t, err)
	absent := time.Since(start)

	start = time.Now()
	_, err = uc.RequestPasswordReset(ctx, "a@b.com")
	require.NoError(t, err)
	present := time.Since(start)
	cancel() // el request terminó; el envío no depende de su contexto

	assert.Less(t, present-absent, 150*time.Millisecond,
		"con cuenta=%v sin cuenta=%v: el correo no debe sumarse a la respuesta", present, absent)

	uc.Wait()
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, 1, mailer.sent, "el correo se entrega aunque el request ya respondió")
	account, _ := s.Accounts().GetByID(context.Background(), "u1")
	assert.False(t, account.PasswordChanged)
}

func TestRequestPasswordReset_EmailVacio(t *testing.T) {
	uc := newAuth(memory.NewStore(), nil)
	_, err := uc.RequestPasswordReset(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rol establishment
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignEstablishmentRole(t *testing.T) {
	s := memory.NewStore()
	uc := newAuth(s, nil)
	ctx := context.Background()

	require.NoError(t, uc.AssignEstablishmentRole(ctx, "u1", "u1"))
	require.NoError(t, uc.AssignEstablishmentRole(ctx, "u1", "u1"), "repetir no es error")

	roles, _ := s.Roles().ListByUser(ctx, "u1")
	assert.Equal(t, []string{entity.RoleEstablishment}, roles)

	assert.ErrorIs(t, uc.AssignEstablishmentRole(ctx, "u1", "u2"), domain.ErrForbidden)
	assert.ErrorIs(t, uc.AssignEstablishmentRole(ctx, "u1", ""), domain.ErrForbidden)
	assert.ErrorIs(t, uc.AssignEstablishmentRole(ctx, "", "u1"), domain.ErrUnauthorized)

	roles, _ = s.Roles().ListByUser(ctx, "u2")
	assert.Empty(t, roles)
}
