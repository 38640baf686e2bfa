package dto

import "time"

// LoginRequest entrada para login. Portal: "admin" | "establishment".
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Portal   string `json:"portal" validate:"omitempty,oneof=admin establishment"`
}

// SessionUser usuario autenticado devuelto en el login.
type SessionUser struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	PasswordChanged bool   `json:"password_changed"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// ChangePasswordRequest entrada de cambio de contraseña.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// PasswordResetRequest cuerpo de request-password-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// AssignRoleRequest cuerpo de assign-establishment-role.
type AssignRoleRequest struct {
	UserID string `json:"userId"`
}

// ApprovedBusinessResponse negocio aprobado.
type ApprovedBusinessResponse struct {
	ID                 string `json:"id"`
	BusinessName       string `json:"business_name"`
	DTICertificateNo   string `json:"dti_certificate_no"`
	RegistrationStatus string `json:"registration_status"`
}

// AccountResponse cuenta aprobada con rol y negocios.
type AccountResponse struct {
	ID              string                     `json:"id"`
	Email           string                     `json:"email"`
	FirstName       string                     `json:"first_name"`
	MiddleName      *string                    `json:"middle_name"`
	LastName        string                     `json:"last_name"`
	Status          string                     `json:"status"`
	Role            string                     `json:"role"`
	PasswordChanged bool                       `json:"password_changed"`
	Businesses      []ApprovedBusinessResponse `json:"businesses"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// AccountListResponse listado paginado de cuentas.
type AccountListResponse struct {
	Items []AccountResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
