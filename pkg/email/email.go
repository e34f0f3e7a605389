package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when no SMTP host is set
var ErrNotConfigured = errors.New("email is not configured")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// Dialer sends composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService renders and sends the transactional emails of the CRM
type EmailService struct {
	config EmailConfig
	dialer Dialer
}

// NewEmailService creates a new email service backed by an SMTP dialer
func NewEmailService(config EmailConfig) *EmailService {
	var dialer Dialer
	if config.SMTPHost != "" {
		dialer = gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)
	}
	return &EmailService{config: config, dialer: dialer}
}

// NewEmailServiceWithDialer creates an email service with a custom dialer
func NewEmailServiceWithDialer(config EmailConfig, dialer Dialer) *EmailService {
	return &EmailService{config: config, dialer: dialer}
}

// Enabled reports whether messages can be sent
func (s *EmailService) Enabled() bool {
	return s != nil && s.dialer != nil
}

// QuotationLine is a rendered quotation item
type QuotationLine struct {
	Description string
	Quantity    int
	UnitPrice   string
	Total       string
}

// QuotationEmail carries the already formatted values of a quotation
type QuotationEmail struct {
	CoworkName     string
	ClientName     string
	Number         string
	Title          string
	Currency       string
	Lines          []QuotationLine
	Subtotal       string
	DiscountAmount string
	TaxLabel       string
	Taxes          string
	Total          string
	ValidUntil     string
	Notes          string
	Footer         string
}

// SendQuotation emails a quotation summary to the client
func (s *EmailService) SendQuotation(to string, data QuotationEmail) error {
	subject := fmt.Sprintf("Cotización %s - %s", data.Number, data.CoworkName)
	return s.send(to, subject, quotationTemplate, data)
}

// MemberInviteEmail is the data of a cowork invitation
type MemberInviteEmail struct {
	CoworkName  string
	InviterName string
	Role        string
}

// SendMemberInvite tells a user they were added to a cowork
func (s *EmailService) SendMemberInvite(to string, data MemberInviteEmail) error {
	subject := fmt.Sprintf("Te invitaron a %s", data.CoworkName)
	return s.send(to, subject, memberInviteTemplate, data)
}

// PasswordResetEmail is the data of a reset link message
type PasswordResetEmail struct {
	Name      string
	ResetURL  string
	ExpiresIn string
}

// SendPasswordReset emails a single-use reset link
func (s *EmailService) SendPasswordReset(to string, data PasswordResetEmail) error {
	return s.send(to, "Restablece tu contraseña", passwordResetTemplate, data)
}

func (s *EmailService) send(to, subject string, tmpl *template.Template, data any) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
