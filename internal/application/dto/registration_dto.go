package dto

import "time"

// BusinessInput negocio declarado en el formulario de registro.
type BusinessInput struct {
	BusinessName     string `json:"business_name" validate:"required"`
	DTICertificateNo string `json:"dti_certificate_no" validate:"required"`
}

// SubmitRegistrationRequest entrada del formulario público de registro.
type SubmitRegistrationRequest struct {
	FirstName  string          `json:"first_name" validate:"required"`
	MiddleName *string         `json:"middle_name"`
	LastName   string          `json:"last_name" validate:"required"`
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=8"`
	Businesses []BusinessInput `json:"businesses" validate:"required,min=1,dive"`
}

// BusinessResponse negocio de una solicitud.
type BusinessResponse struct {
	ID               string `json:"id"`
	BusinessName     string `json:"business_name"`
	DTICertificateNo string `json:"dti_certificate_no"`
}

// RegistrationResponse salida de una solicitud (sin credencial).
type RegistrationResponse struct {
	ID         string             `json:"id"`
	Email      string             `json:"email"`
	FirstName  string             `json:"first_name"`
	MiddleName *string            `json:"middle_name"`
	LastName   string             `json:"last_name"`
	Status     string             `json:"status"`
	Businesses []BusinessResponse `json:"businesses"`
	CreatedAt  time.Time          `json:"created_at"`
}

// RegistrationListResponse listado paginado de solicitudes.
type RegistrationListResponse struct {
	Items []RegistrationResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// ApproveRequest cuerpo de approve-establishment.
type ApproveRequest struct {
	UserID string `json:"userId"`
}

// RejectRequest cuerpo opcional del rechazo.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ApprovedUser identifica la cuenta creada o reutilizada.
type ApprovedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ApproveResponse salida de approve-establishment.
type ApproveResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    ApprovedUser `json:"user"`
}
