// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/models"
)

type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config: config,
	}
}

// SendOTPEmail delivers the verification code. Failures here are logged
// and reported to the caller; the OTP row already exists either way.
func (s *NotificationService) SendOTPEmail(email, code string, expiryMinutes int) error {
	tmpl := s.getEmailTemplate("otp_verification")

	data := map[string]interface{}{
		"Code":      code,
		"ExpiresIn": fmt.Sprintf("%d minutes", expiryMinutes),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(email, tmpl.Subject, body)
}

// SendApplicationVerifiedEmail tells the customer their financing
// application passed review.
func (s *NotificationService) SendApplicationVerifiedEmail(application *models.Application) error {
	tmpl := s.getEmailTemplate("application_verified")

	data := map[string]interface{}{
		"CartID":         application.CartID,
		"AssignedNumber": application.AssignedNumber,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(application.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendApplicationRejectedEmail(application *models.Application, reason string) error {
	tmpl := s.getEmailTemplate("application_rejected")

	data := map[string]interface{}{
		"CartID": application.CartID,
		"Reason": reason,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(application.Email, tmpl.Subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped: SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"otp_verification": {
			Subject: "Your Smartify verification code",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Email Verification</h2>
	<p>Your verification code is:</p>
	<h1>{{.Code}}</h1>
	<p>This code expires in {{.ExpiresIn}}. If you did not request it, you can ignore this email.</p>
	<p>Smartify Team</p>
</body>
</html>`,
		},
		"application_verified": {
			Subject: "Your Smartify application has been approved",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Application Approved</h2>
	<p>Good news! Your application {{.CartID}} has been verified.</p>
	{{if .AssignedNumber}}<p>Your new number is <strong>{{.AssignedNumber}}</strong>.</p>{{end}}
	<p>Smartify Team</p>
</body>
</html>`,
		},
		"application_rejected": {
			Subject: "Update on your Smartify application",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Application Update</h2>
	<p>We could not approve your application {{.CartID}}.</p>
	{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
	<p>You are welcome to visit one of our stores for assistance.</p>
	<p>Smartify Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
