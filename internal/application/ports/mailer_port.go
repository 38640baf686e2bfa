package ports

import "context"

// MailMessage correo HTML a un destinatario.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
}

// Mailer define el puerto de salida para envío de correo (SMTP, proveedor externo o log).
// Los casos de uso tratan los errores de envío como no fatales.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
