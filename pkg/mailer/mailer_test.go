package mailer

import (
	"bytes"
	"context"
	"testing"

	"postfeed/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "localhost", SMTPPort: 2525, SMTPFrom: "noreply@example.com"})

	msg := m.Message("bob@example.com", "Password Reset", "hello")

	assert.Equal(t, []string{"noreply@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"bob@example.com"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "hello")
}

func TestSend_CanceledContext(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "localhost", SMTPPort: 2525})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, "bob@example.com", "s", "b"), context.Canceled)
}

func TestResetEmail(t *testing.T) {
	subject, body := ResetEmail("http://localhost/reset/1/tok")

	assert.Equal(t, "Password Reset", subject)
	assert.Contains(t, body, "http://localhost/reset/1/tok")
}
