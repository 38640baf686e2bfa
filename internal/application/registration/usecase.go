package registration

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/fsic-portal/internal/application/dto"
	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/internal/domain"
	"github.com/jhoicas/fsic-portal/internal/domain/entity"
	"github.com/jhoicas/fsic-portal/internal/domain/repository"
	"github.com/jhoicas/fsic-portal/pkg/names"
)

const minPasswordLength = 8

// RegistrationUseCase recepción y revisión de solicitudes de establecimientos.
type RegistrationUseCase struct {
	tx       TxRunner
	regRepo  repository.PendingRegistrationRepository
	bizRepo  repository.PendingBusinessRepository
	authRepo repository.AuthUserRepository
	events   ports.EventPublisher
	pdf      ports.RegistrationPDFGenerator
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegistrationUseCase construye el caso de uso.
func NewRegistrationUseCase(
	tx TxRunner,
	regRepo repository.PendingRegistrationRepository,
	bizRepo repository.PendingBusinessRepository,
	authRepo repository.AuthUserRepository,
	events ports.EventPublisher,
	pdf ports.RegistrationPDFGenerator,
	log zerolog.Logger,
) *RegistrationUseCase {
	return &RegistrationUseCase{
		tx:       tx,
		regRepo:  regRepo,
		bizRepo:  bizRepo,
		authRepo: authRepo,
		events:   events,
		pdf:      pdf,
		log:      log,
		now:      time.Now,
	}
}

// Submit registra una solicitud pending con sus negocios en una sola transacción.
// La contraseña queda preparada como hash bcrypt; nunca se guarda en claro.
// Devuelve domain.ErrEmailAlreadyExists si el email ya tiene solicitud pendiente o cuenta.
func (uc *RegistrationUseCase) Submit(ctx context.Context, in dto.SubmitRegistrationRequest) (*dto.RegistrationResponse, error) {
	in.FirstName = names.Clean(in.FirstName)
	in.MiddleName = names.CleanOptional(in.MiddleName)
	in.LastName = names.Clean(in.LastName)
	in.Email = names.Email(in.Email)
	if err := validateSubmission(&in); err != nil {
		return nil, err
	}

	existing, err := uc.regRepo.GetPendingByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("registro: buscar solicitud pendiente: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	user, err := uc.authRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("registro: buscar usuario: %w", err)
	}
	if user != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("registro: hash de contraseña: %w", err)
	}

	now := uc.now()
	reg := &entity.PendingRegistration{
		ID:           uuid.New().String(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Status:       entity.RegistrationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	businesses := make([]*entity.PendingBusiness, 0, len(in.Businesses))
	for _, b := range in.Businesses {
		businesses = append(businesses, &entity.PendingBusiness{
			ID:               uuid.New().String(),
			RegistrationID:   reg.ID,
			BusinessName:     b.BusinessName,
			DTICertificateNo: b.DTICertificateNo,
			CreatedAt:        now,
		})
	}

	err = uc.tx.RunRegistration(ctx, func(regRepo repository.PendingRegistrationRepository, bizRepo repository.PendingBusinessRepository) error {
		if err := regRepo.Create(ctx, reg); err != nil {
			return err
		}
		return bizRepo.CreateBatch(ctx, businesses)
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("registro: guardar solicitud: %w", err)
	}

	uc.log.Info().
		Str("registration_id", reg.ID).
		Int("businesses", len(businesses)).
		Msg("solicitud de registro recibida")
	return toRegistrationResponse(reg, businesses), nil
}

func validateSubmission(in *dto.SubmitRegistrationRequest) error {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return fmt.Errorf("%w: first_name, last_name y email son requeridos", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLength)
	}
	if len(in.Businesses) == 0 {
		return fmt.Errorf("%w: se requiere al menos un negocio", domain.ErrInvalidInput)
	}
	seen := make(map[[2]string]bool, len(in.Businesses))
	for i := range in.Businesses {
		b := &in.Businesses[i]
		b.BusinessName = names.Clean(b.BusinessName)
		b.DTICertificateNo = names.Clean(b.DTICertificateNo)
		if b.BusinessName == "" || b.DTICertificateNo == "" {
			return fmt.Errorf("%w: business_name y dti_certificate_no son requeridos", domain.ErrInvalidInput)
		}
		key := [2]string{b.BusinessName, b.DTICertificateNo}
		if seen[key] {
			return fmt.Errorf("%w: negocio duplicado %q", domain.ErrInvalidInput, b.BusinessName)
		}
		seen[key] = true
	}
	return nil
}

// Get devuelve una solicitud con sus negocios. domain.ErrNotFound si no existe.
func (uc *RegistrationUseCase) Get(ctx context.Context, id string) (*dto.RegistrationResponse, error) {
	reg, businesses, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRegistrationResponse(reg, businesses), nil
}

// List lista solicitudes (más recientes primero) con sus negocios. status vacío = todas.
func (uc *RegistrationUseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.RegistrationListResponse, error) {
	if status != "" && !validStatus(status) {
		return nil, fmt.Errorf("%w: status desconocido %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	list, err := uc.regRepo.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("registro: listar: %w", err)
	}
	items := make([]dto.RegistrationResponse, 0, len(list))
	for _, reg := range list {
		businesses, err := uc.bizRepo.ListByRegistration(ctx, reg.ID)
		if err != nil {
			return nil, fmt.Errorf("registro: negocios de %s: %w", reg.ID, err)
		}
		items = append(items, *toRegistrationResponse(reg, businesses))
	}
	return &dto.RegistrationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Reject pasa una solicitud pending a rejected.
// Rechazar dos veces no es error; una solicitud ya aprobada devuelve domain.ErrConflict.
func (uc *RegistrationUseCase) Reject(ctx context.Context, id, reason string) error {
	reg, err := uc.regRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("registro: obtener solicitud: %w", err)
	}
	if reg == nil {
		return domain.ErrNotFound
	}
	switch reg.Status {
	case entity.RegistrationRejected:
		return nil
	case entity.RegistrationApproved:
		return domain.ErrConflict
	}

	now := uc.now()
	err = uc.regRepo.TransitionStatus(ctx, id, entity.RegistrationRejected, now, entity.RegistrationPending)
	if errors.Is(err, domain.ErrConflict) {
		// Otra revisión cambió el estado después de la lectura.
		current, getErr := uc.regRepo.GetByID(ctx, id)
		if getErr == nil && current != nil && current.Status == entity.RegistrationRejected {
			return nil
		}
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("registro: actualizar estado: %w", err)
	}
	uc.log.Info().Str("registration_id", id).Str("email", reg.Email).Msg("solicitud rechazada")

	businesses, err := uc.bizRepo.ListByRegistration(ctx, id)
	if err != nil {
		uc.log.Warn().Err(err).Str("registration_id", id).Msg("no se pudieron contar negocios para el evento")
	}
	publish(ctx, uc.events, uc.log, ports.RegistrationEvent{
		Type:           ports.EventRegistrationRejected,
		RegistrationID: id,
		Email:          reg.Email,
		Businesses:     len(businesses),
		Reason:         reason,
		OccurredAt:     now,
	})
	return nil
}

// SummaryPDF genera el resumen imprimible de la solicitud. Retorna bytes y nombre de archivo.
func (uc *RegistrationUseCase) SummaryPDF(ctx context.Context, id string) ([]byte, string, error) {
	reg, businesses, err := uc.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.pdf.GenerateRegistrationPDF(ctx, reg, businesses)
	if err != nil {
		return nil, "", fmt.Errorf("registro: generar pdf: %w", err)
	}
	return doc, fmt.Sprintf("registration-%s.pdf", reg.ID), nil
}

func (uc *RegistrationUseCase) load(ctx context.Context, id string) (*entity.PendingRegistration, []*entity.PendingBusiness, error) {
	reg, err := uc.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("registro: obtener solicitud: %w", err)
	}
	if reg == nil {
		return nil, nil, domain.ErrNotFound
	}
	businesses, err := uc.bizRepo.ListByRegistration(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("registro: obtener negocios: %w", err)
	}
	return reg, businesses, nil
}

func validStatus(s string) bool {
	return s == entity.RegistrationPending || s == entity.RegistrationApproved || s == entity.RegistrationRejected
}

// publish envía el evento sin propagar errores.
func publish(ctx context.Context, events ports.EventPublisher, log zerolog.Logger, ev ports.RegistrationEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", ev.Type).
			Str("registration_id", ev.RegistrationID).
			Msg("no se pudo publicar el evento")
	}
}

func toRegistrationResponse(reg *entity.PendingRegistration, businesses []*entity.PendingBusiness) *dto.RegistrationResponse {
	out := &dto.RegistrationResponse{
		ID:         reg.ID,
		Email:      reg.Email,
		FirstName:  reg.FirstName,
		MiddleName: reg.MiddleName,
		LastName:   reg.LastName,
		Status:     reg.Status,
		Businesses: make([]dto.BusinessResponse, 0, len(businesses)),
		CreatedAt:  reg.CreatedAt,
	}
	for _, b := range businesses {
		out.Businesses = append(out.Businesses, dto.BusinessResponse{
			ID:               b.ID,
			BusinessName:     b.BusinessName,
			DTICertificateNo: b.DTICertificateNo,
		})
	}
	return out
}
