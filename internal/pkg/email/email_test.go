package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

func newCapturingService(cfg SMTPConfig) (*emailServiceImpl, *[]sentMail) {
	var sent []sentMail
	s := NewEmailService(cfg, zerolog.Nop()).(*emailServiceImpl)
	s.send = func(to, subject, body string) error {
		sent = append(sent, sentMail{to, subject, body})
		return nil
	}
	return s, &sent
}

func TestEmailService_SkipsWhenUnconfigured(t *testing.T) {
	s, sent := newCapturingService(SMTPConfig{ClientURL: "http://localhost:5173"})

	require.NoError(t, s.SendWelcomeEmail("a@b.c", "Dana"))
	require.NoError(t, s.SendPasswordResetEmail("a@b.c", "Dana", "tok"))
	assert.Empty(t, *sent)
}

func TestEmailService_ResetLinkIsEscaped(t *testing.T) {
	s, sent := newCapturingService(SMTPConfig{
		Host: "smtp.example.com", Port: 587, Username: "u", Password: "p",
		ClientURL: "http://localhost:5173",
	})

	require.NoError(t, s.SendPasswordResetEmail("a@b.c", "<b>Dana</b>", "abc123"))
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "a@b.c", mail.to)
	assert.Contains(t, mail.body, "http://localhost:5173/reset-password?token=abc123")
	assert.Contains(t, mail.body, "&lt;b&gt;Dana&lt;/b&gt;")
}

func TestBuildMessage_EncodesHeaders(t *testing.T) {
	msg := string(buildMessage("StudyHub <x@y.z>", "a@b.c", "שלום", "<p>hi</p>"))

	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hi</p>")
}
