package entity

import "time"

// Roles válidos (enum app_role).
const (
	RoleAdmin         = "admin"
	RoleEstablishment = "establishment"
)

// ValidRole informa si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEstablishment
}

// Estados de ApprovedAccount.
const (
	AccountActive   = "active"
	AccountInactive = "inactive"
)

// AuthUser es la cuenta de autenticación (almacén de usuarios, tabla auth_users).
type AuthUser struct {
	ID               string
	Email            string
	PasswordHash     string // bcrypt
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ApprovedAccount es el perfil permanente de un usuario aprobado (tabla approved_users).
// ID coincide con AuthUser.ID.
type ApprovedAccount struct {
	ID              string
	FirstName       string
	MiddleName      *string
	LastName        string
	Status          string
	PasswordChanged bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RoleGrant asigna un rol a un usuario (tabla user_roles). Única por (UserID, Role).
type RoleGrant struct {
	ID        string
	UserID    string
	Role      string
	CreatedAt time.Time
}
