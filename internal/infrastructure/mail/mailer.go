// Package mail implementa ports.Mailer sobre SMTP (gomail) y un mailer de log para desarrollo.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/pkg/config"
)

var (
	_ ports.Mailer = (*SMTPMailer)(nil)
	_ ports.Mailer = (*LogMailer)(nil)
)

// sender es la parte de *gomail.Dialer que usa el mailer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer envía correos HTML por SMTP.
type SMTPMailer struct {
	dialer sender
	from   string
	log    zerolog.Logger
}

// NewSMTPMailer construye el mailer desde la configuración SMTP.
func NewSMTPMailer(cfg config.MailConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

// Send arma el mensaje y lo entrega. gomail no acepta contexto: solo se respeta una cancelación previa.
func (m *SMTPMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := buildMessage(m.from, msg)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp: enviar a %s: %w", msg.To, err)
	}
	m.log.Debug().Str("subject", msg.Subject).Msg("correo enviado")
	return nil
}

func buildMessage(from string, msg ports.MailMessage) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)
	return gm
}

// LogMailer registra el envío sin entregar nada. Nunca escribe el cuerpo: puede llevar una clave temporal.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer construye el mailer de desarrollo.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send solo deja constancia en el log.
func (m *LogMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("correo no enviado (SMTP sin configurar)")
	return nil
}

// New elige SMTPMailer si hay host configurado; si no, LogMailer.
func New(cfg config.MailConfig, log zerolog.Logger) ports.Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg, log)
	}
	return NewLogMailer(log)
}
