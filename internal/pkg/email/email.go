package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Sender delivers transactional mail
type Sender interface {
	SendOrganizationWelcome(ctx context.Context, msg OrganizationWelcome) error
}

// OrganizationWelcome is sent once an organization and its admin exist.
// It never carries the admin password.
type OrganizationWelcome struct {
	To              string
	InstitutionName string
	OrgCode         string
	AdminUsername   string
	LoginURL        string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// SMTPSender sends mail over SMTP. Without a host it only logs what it would send.
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{config: config, logger: logger}
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2>Welcome to Rollcall, {{.InstitutionName}}!</h2>
		<p>Your organization has been registered.</p>
		<p>Organization code: <strong>{{.OrgCode}}</strong></p>
		<p>Administrator username: <strong>{{.AdminUsername}}</strong></p>
		<p>Sign in with the organization code, your username and the password you chose during registration.</p>
		{{if .LoginURL}}<p><a href="{{.LoginURL}}">{{.LoginURL}}</a></p>{{end}}
	</div>
</body>
</html>`))

// SendOrganizationWelcome sends the post-registration welcome mail
func (s *SMTPSender) SendOrganizationWelcome(ctx context.Context, msg OrganizationWelcome) error {
	if s.config.Host == "" {
		s.logger.Info().
			Str("to", msg.To).
			Str("org_code", msg.OrgCode).
			Str("admin_username", msg.AdminUsername).
			Msg("SMTP not configured - welcome email not sent")
		return nil
	}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	subject := fmt.Sprintf("Welcome to Rollcall - %s", msg.InstitutionName)
	return s.send(ctx, msg.To, subject, body.String())
}

// BuildMessage assembles the RFC 5322 message for an HTML body
func BuildMessage(fromName, fromEmail, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (s *SMTPSender) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := BuildMessage(s.config.FromName, s.config.FromEmail, to, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{to}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
