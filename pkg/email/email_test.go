package email

import (
	"bytes"
	"errors"
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, m...)
	return nil
}

// subject returns the decoded Subject header. gomail stores non-ASCII
// headers as RFC 2047 encoded words.
func subject(t *testing.T, m *gomail.Message) string {
	t.Helper()
	values := m.GetHeader("Subject")
	require.Len(t, values, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(values[0])
	require.NoError(t, err)
	return decoded
}

func testConfig() EmailConfig {
	return EmailConfig{FromName: "Cowork CRM", FromEmail: "ventas@cowork.test"}
}

func TestSendQuotation(t *testing.T) {
	dialer := &captureDialer{}
	svc := NewEmailServiceWithDialer(testConfig(), dialer)

	err := svc.SendQuotation("cliente@example.com", QuotationEmail{
		CoworkName: "Casa Cowork",
		ClientName: "Acme",
		Number:     "COT-000001",
		Title:      "Oficina privada",
		Currency:   "CLP",
		Lines:      []QuotationLine{{Description: "Oficina <4p>", Quantity: 1, UnitPrice: "100000", Total: "100000"}},
		Total:      "119000",
		TaxLabel:   "IVA",
	})
	require.NoError(t, err)
	require.Len(t, dialer.messages, 1)

	m := dialer.messages[0]
	assert.Equal(t, []string{"cliente@example.com"}, m.GetHeader("To"))
	assert.Equal(t, "Cotización COT-000001 - Casa Cowork", subject(t, m))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "COT-000001")
}

func TestSendWithoutDialer(t *testing.T) {
	svc := NewEmailService(testConfig())
	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.SendMemberInvite("a@b.c", MemberInviteEmail{CoworkName: "X"}), ErrNotConfigured)
}

func TestSendFailure(t *testing.T) {
	svc := NewEmailServiceWithDialer(testConfig(), &captureDialer{err: errors.New("connection refused")})
	err := svc.SendMemberInvite("a@b.c", MemberInviteEmail{CoworkName: "X", InviterName: "Ana", Role: "admin"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendPasswordReset(t *testing.T) {
	dialer := &captureDialer{}
	svc := NewEmailServiceWithDialer(testConfig(), dialer)

	err := svc.SendPasswordReset("camila@example.com", PasswordResetEmail{
		Name:      "Camila",
		ResetURL:  "http://localhost:3000/reset-password?token=abc",
		ExpiresIn: "60 minutos",
	})
	require.NoError(t, err)
	require.Len(t, dialer.messages, 1)
	assert.Equal(t, []string{"camila@example.com"}, dialer.messages[0].GetHeader("To"))
	assert.Equal(t, "Restablece tu contraseña", subject(t, dialer.messages[0]))
}
