// Package notify arma los correos transaccionales del portal.
package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jhoicas/fsic-portal/internal/application/ports"
)

var passwordResetTmpl = template.Must(template.New("reset").Parse(`
<div style="font-family: Poppins, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 10px;">
  <h1 style="color: #F00; text-align: center;">PASSWORD RESET</h1>
  <p>Your password has been reset as requested. Please use the following temporary password to log in:</p>
  <div style="background-color: #f4f4f4; padding: 15px; border-radius: 5px; margin: 20px 0; text-align: center; font-family: monospace; font-size: 18px; letter-spacing: 1px;">{{.Password}}</div>
  <p>For security reasons, you will be required to change your password after logging in.</p>
  <p>If you didn't request a password reset, please contact support immediately.</p>
  <div style="margin-top: 30px; text-align: center;">
    <a href="{{.LoginURL}}" style="background-color: #FE623F; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; font-weight: bold;">GO TO LOGIN</a>
  </div>
</div>`))

var approvalTmpl = template.Must(template.New("approval").Parse(`
<div style="font-family: Poppins, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 10px;">
  <h1 style="color: #F00; text-align: center;">REGISTRATION APPROVED</h1>
  <p>Hello {{.Name}},</p>
  <p>Your establishment registration has been approved. The following businesses are now linked to your account:</p>
  <ul>{{range .Businesses}}<li>{{.}}</li>{{end}}</ul>
  <p>You can log in with the email and password you provided when registering.</p>
  <div style="margin-top: 30px; text-align: center;">
    <a href="{{.LoginURL}}" style="background-color: #FE623F; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; font-weight: bold;">GO TO LOGIN</a>
  </div>
</div>`))

// PasswordResetEmail correo con la clave temporal. Es el único canal por el que viaja la clave.
func PasswordResetEmail(to, tempPassword, loginURL string) (ports.MailMessage, error) {
	var buf bytes.Buffer
	err := passwordResetTmpl.Execute(&buf, struct{ Password, LoginURL string }{tempPassword, loginURL})
	if err != nil {
		return ports.MailMessage{}, fmt.Errorf("notify: plantilla reset: %w", err)
	}
	return ports.MailMessage{To: to, Subject: "Your Temporary Password", HTML: buf.String()}, nil
}

// ApprovalEmail aviso de aprobación (sin secretos).
func ApprovalEmail(to, name string, businesses []string, loginURL string) (ports.MailMessage, error) {
	var buf bytes.Buffer
	data := struct {
		Name       string
		Businesses []string
		LoginURL   string
	}{name, businesses, loginURL}
	if err := approvalTmpl.Execute(&buf, data); err != nil {
		return ports.MailMessage{}, fmt.Errorf("notify: plantilla aprobación: %w", err)
	}
	return ports.MailMessage{To: to, Subject: "Your Establishment Registration Was Approved", HTML: buf.String()}, nil
}
