// Package smtp envía el correo de invitación con enlace de acceso (magic link).
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/patmos-mobile/sync-api/pkg/config"
	"github.com/patmos-mobile/sync-api/pkg/logger"
)

// Mailer envía invitaciones por SMTP. Con las credenciales SMTP vacías no
// falla: registra el enlace en el log para entornos de desarrollo.
type Mailer struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

// NewMailer construye el mailer de invitaciones.
func NewMailer(cfg config.SMTPConfig, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

type inviteData struct {
	FirstName string
	Email     string
	Link      string
	FromName  string
}

var inviteTmpl = template.Must(template.New("invite").Parse(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>Has sido invitado a {{.FromName}}</h2>
	<p>Hola <strong>{{.FirstName}}</strong>,</p>
	<p>Te invitaron a colaborar. Haz clic en el enlace para completar tu acceso:</p>
	<p><a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Completar acceso</a></p>
	<p>Si no esperabas esta invitación, ignora este correo.</p>
	<hr>
	<p style="color: #666; font-size: 12px;">{{.FromName}}</p>
</body>
</html>
`))

// SendMagicLink envía el enlace de acceso sin contraseña al invitado.
func (m *Mailer) SendMagicLink(_ context.Context, email, firstName, token string) error {
	link := fmt.Sprintf("%s/api/auth/challenge/redeem?token=%s", m.cfg.BaseURL, token)

	if m.cfg.Username == "" || m.cfg.Password == "" {
		// SMTP sin configurar: dejar el enlace en el log en lugar de fallar.
		m.log.Info().
			Str("email", email).
			Str("link", link).
			Msg("SMTP no configurado, enlace de invitación registrado en el log")
		return nil
	}

	var body bytes.Buffer
	if err := inviteTmpl.Execute(&body, inviteData{
		FirstName: firstName,
		Email:     email,
		Link:      link,
		FromName:  m.cfg.FromName,
	}); err != nil {
		return fmt.Errorf("renderizar correo de invitación: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.cfg.FromName, m.cfg.FromEmail, email, "Invitación a "+m.cfg.FromName, body.String(),
	))

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{email}, msg); err != nil {
		return fmt.Errorf("enviar correo de invitación: %w", err)
	}
	return nil
}
