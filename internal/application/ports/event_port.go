package ports

import (
	"context"
	"time"
)

// Tipos de evento de registro.
const (
	EventRegistrationApproved = "registration.approved"
	EventRegistrationRejected = "registration.rejected"
)

// RegistrationEvent se publica cuando una solicitud cambia de estado.
type RegistrationEvent struct {
	Type           string    `json:"type"`
	RegistrationID string    `json:"registration_id"`
	UserID         string    `json:"user_id,omitempty"`
	Email          string    `json:"email"`
	Businesses     int       `json:"businesses"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EventPublisher define el puerto de salida para eventos de dominio.
// Un fallo al publicar nunca interrumpe la transición que lo originó.
type EventPublisher interface {
	Publish(ctx context.Context, event RegistrationEvent) error
}
