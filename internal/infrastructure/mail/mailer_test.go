package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/fsic-portal/internal/application/ports"
	"github.com/jhoicas/fsic-portal/pkg/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPMailer_Send(t *testing.T) {
	d := &fakeDialer{}
	m := &SMTPMailer{dialer: d, from: "no-reply@fsic.local", log: zerolog.Nop()}

	err := m.Send(context.Background(), ports.MailMessage{To: "a@b.com", Subject: "Hola", HTML: "<p>x</p>"})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"a@b.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"no-reply@fsic.local"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"Hola"}, d.sent[0].GetHeader("Subject"))
}

func TestSMTPMailer_Errores(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	m := &SMTPMailer{dialer: d, log: zerolog.Nop()}
	assert.Error(t, m.Send(context.Background(), ports.MailMessage{To: "a@b.com"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.err = nil
	assert.ErrorIs(t, m.Send(ctx, ports.MailMessage{To: "a@b.com"}), context.Canceled)
	assert.Len(t, d.sent, 1, "con el contexto cancelado no se intenta enviar")
}

func TestLogMailer_NoEscribeElCuerpo(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	require.NoError(t, m.Send(context.Background(), ports.MailMessage{To: "a@b.com", Subject: "Clave", HTML: "CLAVE-SECRETA"}))
	assert.Contains(t, buf.String(), "a@b.com")
	assert.NotContains(t, buf.String(), "CLAVE-SECRETA")
}

func TestNew_EligeSegunConfig(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.MailConfig{}, zerolog.Nop()))
	assert.IsType(t, &SMTPMailer{}, New(config.MailConfig{Host: "smtp.local", Port: 587}, zerolog.Nop()))
}
