package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService sends the transactional mails of the platform
type EmailService interface {
	SendWelcomeEmail(toEmail, toName string) error
	SendVerificationEmail(toEmail, toName, token string) error
	SendPasswordResetEmail(toEmail, toName, token string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// ClientURL is the web app address used in links
	ClientURL string
}

// implicit TLS port; other ports use STARTTLS through smtp.SendMail
const smtpsPort = 465

type emailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to, subject, htmlBody string) error
}

// NewEmailService returns a service that logs instead of sending when SMTP
// credentials are missing.
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &emailServiceImpl{config: config, logger: logger}
	s.send = s.sendHTMLEmail
	return s
}

func (s *emailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

func (s *emailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Msg("SMTP not configured, skipping welcome email")
		return nil
	}
	body, err := render(welcomeTemplate, mailData{Name: toName, Link: s.config.ClientURL})
	if err != nil {
		return err
	}
	return s.send(toEmail, "ברוכים הבאים למערכת StudyHub-IL", body)
}

func (s *emailServiceImpl) SendVerificationEmail(toEmail, toName, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.config.ClientURL, token)
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Str("verificationURL", link).Msg("SMTP not configured, verification email not sent")
		return nil
	}
	body, err := render(verificationTemplate, mailData{Name: toName, Link: link, Token: token})
	if err != nil {
		return err
	}
	return s.send(toEmail, "אימות כתובת האימייל - StudyHub-IL", body)
}

func (s *emailServiceImpl) SendPasswordResetEmail(toEmail, toName, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.ClientURL, token)
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Str("resetURL", link).Msg("SMTP not configured, password reset email not sent")
		return nil
	}
	body, err := render(resetTemplate, mailData{Name: toName, Link: link, Token: token})
	if err != nil {
		return err
	}
	return s.send(toEmail, "איפוס סיסמה - StudyHub-IL", body)
}

func (s *emailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	from := s.config.FromEmail
	if from == "" {
		from = s.config.Username
	}
	message := buildMessage(fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), from), toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if s.config.Port != smtpsPort {
		if err := smtp.SendMail(serverAddress, auth, from, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	return b.Bytes()
}

type mailData struct {
	Name  string
	Link  string
	Token string
}

func render(t *template.Template, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

const layoutOpen = `<!DOCTYPE html><html dir="rtl" lang="he"><head><meta charset="UTF-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; direction: rtl; text-align: right; background: #f3f4f6; padding: 40px 20px;">
<div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 16px; padding: 35px;">`

const layoutClose = `<p style="color: #6b7280;">צוות StudyHub-IL</p></div></body></html>`

var welcomeTemplate = template.Must(template.New("welcome").Parse(layoutOpen + `
<h1 style="color: #1e40af;">ברוכים הבאים, {{.Name}}!</h1>
<p>החשבון שלך ב-StudyHub-IL נוצר בהצלחה. עכשיו אפשר להעלות סיכומים, לשאול שאלות בפורום ולשתף כלים עם הקהילה.</p>
<p><a href="{{.Link}}" style="background: #1e40af; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none;">כניסה למערכת</a></p>
` + layoutClose))

var verificationTemplate = template.Must(template.New("verify").Parse(layoutOpen + `
<h1 style="color: #1e40af;">שלום {{.Name}},</h1>
<p>כדי לאמת את כתובת האימייל שלך לחצו על הכפתור:</p>
<p><a href="{{.Link}}" style="background: #1e40af; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none;">אימות אימייל</a></p>
<p>או השתמשו בקוד: <strong>{{.Token}}</strong></p>
<p>הקישור תקף ל-24 שעות.</p>
` + layoutClose))

var resetTemplate = template.Must(template.New("reset").Parse(layoutOpen + `
<h1 style="color: #1e40af;">שלום {{.Name}},</h1>
<p>התקבלה בקשה לאיפוס הסיסמה שלך. לחצו על הכפתור כדי לבחור סיסמה חדשה:</p>
<p><a href="{{.Link}}" style="background: #1e40af; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none;">איפוס סיסמה</a></p>
<p>הקישור תקף לשעה אחת. אם לא ביקשת איפוס, אפשר להתעלם מהודעה זו.</p>
` + layoutClose))
