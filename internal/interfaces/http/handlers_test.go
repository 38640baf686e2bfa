package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fsic-portal/internal/application/auth"
	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/internal/application/registration"
	"github.com/jhoicas/fsic-portal/internal/application/usecase"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
	"github.com/jhoicas/fsic-portal/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/fsic-portal/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/fsic-portal/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type memMailer struct {
	mu   sync.Mutex
	sent []ports.MailMessage
}

func (m *memMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type nopPDF struct{}

func (nopPDF) GenerateRegistrationPDF(context.Context, *entity.PendingRegistration, []*entity.PendingBusiness) ([]byte, error) {
	return []byte("%PDF-1.4 test"), nil
}

type portal struct {
	app    *fiber.App
	store  *memory.Store
	mailer *memMailer
	auth   *auth.AuthUseCase
}

// newPortal arma la app sobre el store en memoria; overrides ajusta las dependencias de aprobación.
func newPortal(t *testing.T, resetPerMinute int, overrides ...func(*registration.ApprovalDeps)) *portal {
	t.Helper()
	s := memory.NewStore()
	mailer := &memMailer{}
	log := zerolog.Nop()

	authUC := auth.NewAuthUseCase(auth.Deps{
		AuthUsers: s.AuthUsers(),
		Accounts:  s.Accounts(),
		Roles:     s.Roles(),
		Mailer:    mailer,
		JWT:       auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
		Log:       log,
	})
	approvalDeps := registration.ApprovalDeps{
		Registrations:      s.Registrations(),
		Businesses:         s.PendingBusinesses(),
		AuthUsers:          s.AuthUsers(),
		Accounts:           s.Accounts(),
		Roles:              s.Roles(),
		ApprovedBusinesses: s.ApprovedBusinesses(),
		Mailer:             mailer,
		Log:                log,
	}
	for _, o := range overrides {
		o(&approvalDeps)
	}
	approvalUC := registration.NewApprovalUseCase(approvalDeps)
	registrationUC := registration.NewRegistrationUseCase(
		s.TxRunner(), s.Registrations(), s.PendingBusinesses(), s.AuthUsers(), nil, nopPDF{}, log,
	)

	app := apphttp.NewApp("fsic-portal-test", apphttp.RouterDeps{
		RegistrationUC: registrationUC,
		ApprovalUC:     approvalUC,
		AuthUC:         authUC,
		AccountUC:      usecase.NewAccountUseCase(s.Accounts(), s.AuthUsers(), s.Roles(), s.ApprovedBusinesses()),
		DashboardUC:    usecase.NewDashboardUseCase(s.Registrations(), s.Accounts()),
		JWTSecret:      testJWTSecret,
		ResetPerMinute: resetPerMinute,
		Log:            log,
	})
	return &portal{app: app, store: s, mailer: mailer, auth: authUC}
}

// seedUser crea usuario de auth, perfil aprobado y rol.
func (p *portal) seedUser(t *testing.T, id, email, password, role string, changed bool) {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = p.store.AuthUsers().CreateIfAbsent(ctx, &entity.AuthUser{ID: id, Email: email, PasswordHash: string(hash)})
	require.NoError(t, err)
	_, err = p.store.Accounts().CreateIfAbsent(ctx, &entity.ApprovedAccount{
		ID: id, FirstName: "Maria", LastName: "Santos", Status: entity.AccountActive, PasswordChanged: changed, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = p.store.Roles().GrantIfAbsent(ctx, &entity.RoleGrant{ID: id + "-" + role, UserID: id, Role: role})
	require.NoError(t, err)
}

// seedPending crea la solicitud p1 / a@b.com con Acme Corp / DTI-123.
func (p *portal) seedPending(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("elegida123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, p.store.Registrations().Create(ctx, &entity.PendingRegistration{
		ID: "p1", Email: "a@b.com", FirstName: "Juan", LastName: "Dela Cruz",
		PasswordHash: string(hash), Status: entity.RegistrationPending, CreatedAt: time.Now(),
	}))
	require.NoError(t, p.store.PendingBusinesses().CreateBatch(ctx, []*entity.PendingBusiness{
		{ID: "b1", RegistrationID: "p1", BusinessName: "Acme Corp", DTICertificateNo: "DTI-123"},
	}))
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, userID+"@test.local", role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (p *portal) do(t *testing.T, method, path, authz string, body any) (*http.Response, []byte) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return p.doRaw(t, method, path, authz, raw)
}

// doRaw envía el cuerpo tal cual, sirve para JSON mal formado.
func (p *portal) doRaw(t *testing.T, method, path, authz string, raw []byte) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if raw != nil {
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// ──────────────────────────────────────────────────────────────────────────────
// approve-establishment
// ──────────────────────────────────────────────────────────────────────────────

func TestApproveEstablishment_OK(t *testing.T) {
	p := newPortal(t, 0)
	p.seedPending(t)

	resp, raw := p.do(t, http.MethodPost, "/functions/v1/approve-establishment", bearer(t, "admin-1", "admin"), dto.ApproveRequest{UserID: "p1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.ApproveResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "a@b.com", out.User.Email)
	assert.NotEmpty(t, out.User.ID)

	// Segunda llamada: misma cuenta, sin duplicados.
	resp, raw = p.do(t, http.MethodPost, "/functions/v1/approve-establishment", bearer(t, "admin-1", "admin"), dto.ApproveRequest{UserID: "p1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var again dto.ApproveResponse
	require.NoError(t, json.Unmarshal(raw, &again))
	assert.Equal(t, out.User.ID, again.User.ID)
	biz, _ := p.store.ApprovedBusinesses().ListByUser(context.Background(), out.User.ID)
	assert.Len(t, biz, 1)
}

func TestApproveEstablishment_Errores(t *testing.T) {
	p := newPortal(t, 0)
	admin := bearer(t, "admin-1", "admin")

	cases := []struct {
		name   string
		auth   string
		body   any
		status int
		code   string
	}{
		{"sin userId", admin, dto.ApproveRequest{}, http.StatusBadRequest, "VALIDATION"},
		{"no existe", admin, dto.ApproveRequest{UserID: "nada"}, http.StatusNotFound, "NOT_FOUND"},
		{"sin token", "", dto.ApproveRequest{UserID: "p1"}, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"rol establishment", bearer(t, "u1", "establishment"), dto.ApproveRequest{UserID: "p1"}, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := p.do(t, http.MethodPost, "/functions/v1/approve-establishment", tc.auth, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.NotEmpty(t, body.Error, "toda falla lleva un mensaje legible")
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

type failingRoles struct {
	repository.RoleRepository
}

func (failingRoles) GrantIfAbsent(context.Context, *entity.RoleGrant) (bool, error) {
	return false, errors.New("conexión rechazada")
}

func TestApproveEstablishment_FalloInternoIndicaElPaso(t *testing.T) {
	p := newPortal(t, 0, func(d *registration.ApprovalDeps) {
		d.Roles = failingRoles{RoleRepository: d.Roles}
	})
	p.seedPending(t)

	resp, raw := p.do(t, http.MethodPost, "/functions/v1/approve-establishment", bearer(t, "admin-1", "admin"), dto.ApproveRequest{UserID: "p1"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "UPSTREAM", body.Code)
	assert.Contains(t, body.Error, "aprobación: asignar rol")

	reg, err := p.store.Registrations().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationPending, reg.Status, "la solicitud sigue pendiente para reintentar")
}

// ──────────────────────────────────────────────────────────────────────────────
// request-password-reset
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestPasswordReset_RespuestaIndistinguible(t *testing.T) {
	p := newPortal(t, 0)
	p.seedUser(t, "u1", "a@b.com", "secreto123", "establishment", true)

	respKnown, known := p.do(t, http.MethodPost, "/functions/v1/request-password-reset", "", dto.PasswordResetRequest{Email: "a@b.com"})
	respUnknown, unknown := p.do(t, http.MethodPost, "/functions/v1/request-password-reset", "", dto.PasswordResetRequest{Email: "nadie@b.com"})

	assert.Equal(t, http.StatusOK, respKnown.StatusCode)
	assert.Equal(t, respKnown.StatusCode, respUnknown.StatusCode)
	assert.Equal(t, string(known), string(unknown))

	var out dto.SuccessResponse
	require.NoError(t, json.Unmarshal(known, &out))
	assert.True(t, out.Success)
	assert.Equal(t, auth.ResetMessage, out.Message)

	p.auth.Wait()
	account, _ := p.store.Accounts().GetByID(context.Background(), "u1")
	assert.False(t, account.PasswordChanged)
	assert.Len(t, p.mailer.sent, 1)
}

func TestRequestPasswordReset_SinEmail(t *testing.T) {
	p := newPortal(t, 0)
	resp, _ := p.do(t, http.MethodPost, "/functions/v1/request-password-reset", "", dto.PasswordResetRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestPasswordReset_Limite(t *testing.T) {
	p := newPortal(t, 2)
	for i := 0; i < 2; i++ {
		resp, _ := p.do(t, http.MethodPost, "/functions/v1/request-password-reset", "", dto.PasswordResetRequest{Email: "x@b.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, raw := p.do(t, http.MethodPost, "/functions/v1/request-password-reset", "", dto.PasswordResetRequest{Email: "x@b.com"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(raw), "TOO_MANY_REQUESTS")
}

// ──────────────────────────────────────────────────────────────────────────────
// assign-establishment-role
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignEstablishmentRole(t *testing.T) {
	p := newPortal(t, 0)
	tok := bearer(t, "u1", "")

	for i := 0; i < 2; i++ {
		resp, raw := p.do(t, http.MethodPost, "/functions/v1/assign-establishment-role", tok, dto.AssignRoleRequest{UserID: "u1"})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
		assert.Contains(t, string(raw), `"success":true`)
	}
	roles, _ := p.store.Roles().ListByUser(context.Background(), "u1")
	assert.Equal(t, []string{"establishment"}, roles, "repetir no duplica")

	resp, _ := p.do(t, http.MethodPost, "/functions/v1/assign-establishment-role", tok, dto.AssignRoleRequest{UserID: "u2"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = p.do(t, http.MethodPost, "/functions/v1/assign-establishment-role", "", dto.AssignRoleRequest{UserID: "u1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssignEstablishmentRole_CuerpoInvalido(t *testing.T) {
	p := newPortal(t, 0)

	resp, raw := p.doRaw(t, http.MethodPost, "/functions/v1/assign-establishment-role", bearer(t, "u1", ""), []byte(`{"userId":`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "INVALID_BODY", body.Code)

	roles, _ := p.store.Roles().ListByUser(context.Background(), "u1")
	assert.Empty(t, roles)
}

// ──────────────────────────────────────────────────────────────────────────────
// CORS
// ──────────────────────────────────────────────────────────────────────────────

func TestCORS_Preflight(t *testing.T) {
	p := newPortal(t, 0)
	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/approve-establishment", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "authorization")
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo: registro → aprobación → login → perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujoCompleto(t *testing.T) {
	p := newPortal(t, 0)

	resp, raw := p.do(t, http.MethodPost, "/api/registrations", "", dto.SubmitRegistrationRequest{
		FirstName: "Juan", LastName: "Dela Cruz", Email: "a@b.com", Password: "elegida123",
		Businesses: []dto.BusinessInput{{BusinessName: "Acme Corp", DTICertificateNo: "DTI-123"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var reg dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(raw, &reg))

	admin := bearer(t, "admin-1", "admin")
	resp, raw = p.do(t, http.MethodGet, "/api/admin/registrations?status=pending", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.RegistrationListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, reg.ID, list.Items[0].ID)

	resp, raw = p.do(t, http.MethodGet, "/api/admin/registrations/"+reg.ID+"/pdf", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, _ = p.do(t, http.MethodPost, "/functions/v1/approve-establishment", admin, dto.ApproveRequest{UserID: reg.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = p.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "a@b.com", Password: "elegida123", Portal: "establishment"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	assert.True(t, login.User.PasswordChanged)

	resp, raw = p.do(t, http.MethodGet, "/api/establishment/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var me dto.AccountResponse
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "a@b.com", me.Email)
	require.Len(t, me.Businesses, 1)
	assert.Equal(t, "unregistered", me.Businesses[0].RegistrationStatus)

	resp, raw = p.do(t, http.MethodGet, "/api/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats dto.DashboardResponse
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.ApprovedRegistrations)
	assert.Equal(t, 1, stats.ApprovedAccounts)

	resp, _ = p.do(t, http.MethodPost, "/api/admin/registrations/"+reg.ID+"/reject", admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "no se rechaza una solicitud aprobada")
}

func TestClaveTemporal_BloqueaHastaCambiarla(t *testing.T) {
	p := newPortal(t, 0)
	p.seedUser(t, "u1", "a@b.com", "temporal123", "establishment", false)

	resp, raw := p.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "a@b.com", Password: "temporal123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	assert.False(t, login.User.PasswordChanged)
	tok := "Bearer " + login.Token

	resp, raw = p.do(t, http.MethodGet, "/api/establishment/me", tok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "PASSWORD_CHANGE_REQUIRED")

	resp, raw = p.do(t, http.MethodPost, "/api/auth/change-password", tok, dto.ChangePasswordRequest{CurrentPassword: "temporal123", NewPassword: "definitiva123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, _ = p.do(t, http.MethodGet, "/api/establishment/me", tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_PortalAdminSinRol(t *testing.T) {
	p := newPortal(t, 0)
	p.seedUser(t, "u1", "a@b.com", "secreto123", "establishment", true)

	resp, _ := p.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "a@b.com", Password: "secreto123", Portal: "admin"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = p.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "a@b.com", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
