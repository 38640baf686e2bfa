package entity

import "time"

// Estados de registro FSIC de un negocio aprobado.
const (
	BusinessUnregistered = "unregistered"
	BusinessRegistered   = "registered"
)

// ApprovedBusiness es un negocio materializado al aprobar una solicitud (tabla approved_businesses).
// Clave natural: (UserID, BusinessName, DTICertificateNo).
type ApprovedBusiness struct {
	ID                 string
	UserID             string
	BusinessName       string
	DTICertificateNo   string
	RegistrationStatus string
	CreatedAt          time.Time
}
