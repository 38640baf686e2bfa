package entity

import "time"

// Estados válidos de una solicitud de registro (enum request_status).
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// PendingRegistration es una solicitud de alta de establecimiento aún no aprobada (tabla pending_users).
type PendingRegistration struct {
	ID         string
	Email      string
	FirstName  string
	MiddleName *string
	LastName   string
	// PasswordHash es la credencial preparada al registrarse (bcrypt). Vacía = sin credencial.
	PasswordHash string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasStagedCredential indica si el registro trae credencial para crear la cuenta.
func (r *PendingRegistration) HasStagedCredential() bool {
	return r != nil && r.PasswordHash != ""
}

// PendingBusiness es un negocio declarado en la solicitud (tabla pending_businesses).
// Inmutable después de crearse.
type PendingBusiness struct {
	ID               string
	RegistrationID   string
	BusinessName     string
	DTICertificateNo string
	CreatedAt        time.Time
}
